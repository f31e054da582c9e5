package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	registry, err := NewRegistry(":memory:")
	require.NoError(t, err, "Failed to create registry")
	t.Cleanup(func() {
		_ = registry.Close()
	})
	return registry
}

func TestAddAndGetPatient(t *testing.T) {
	registry := newTestRegistry(t)

	patient, err := registry.AddPatient(Patient{
		FullName:     "  Ana Souza ",
		Practitioner: "Dr. Silva",
		Diagnosis:    "Hypertension",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, patient.PublicID)
	assert.Equal(t, "Ana Souza", patient.FullName)
	assert.False(t, patient.CreatedAt.IsZero(), "Expected CreatedAt to be set")
	assert.False(t, patient.LastVisit.IsZero(), "Expected LastVisit to default to now")

	fetched, err := registry.GetPatient(patient.PublicID)
	require.NoError(t, err)
	assert.Equal(t, patient.ID, fetched.ID)
	assert.Equal(t, "Hypertension", fetched.Diagnosis)
}

func TestAddPatientRequiresName(t *testing.T) {
	registry := newTestRegistry(t)

	_, err := registry.AddPatient(Patient{FullName: "   ", Diagnosis: "Asthma"})
	assert.ErrorIs(t, err, ErrNameRequired)

	patients, err := registry.GetRecentPatients(10)
	require.NoError(t, err)
	assert.Empty(t, patients)
}

func TestAddPatientAssignsDistinctIDs(t *testing.T) {
	registry := newTestRegistry(t)

	first, err := registry.AddPatient(Patient{FullName: "Ana", PublicID: "ignored"})
	require.NoError(t, err)
	second, err := registry.AddPatient(Patient{FullName: "Ana"})
	require.NoError(t, err)

	assert.NotEqual(t, "ignored", first.PublicID)
	assert.NotEqual(t, first.PublicID, second.PublicID)
}

func TestGetRecentPatients(t *testing.T) {
	registry := newTestRegistry(t)

	for _, name := range []string{"Ana", "Beto", "Carla"} {
		_, err := registry.AddPatient(Patient{FullName: name})
		require.NoError(t, err)
	}

	patients, err := registry.GetRecentPatients(2)
	require.NoError(t, err)
	require.Len(t, patients, 2)
	assert.Equal(t, "Carla", patients[0].FullName)
	assert.Equal(t, "Beto", patients[1].FullName)
}

func TestRecordVisit(t *testing.T) {
	registry := newTestRegistry(t)

	patient, err := registry.AddPatient(Patient{FullName: "Ana"})
	require.NoError(t, err)

	visit := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	updated, err := registry.RecordVisit(patient.PublicID, visit)
	require.NoError(t, err)
	assert.True(t, visit.Equal(updated.LastVisit))

	fetched, err := registry.GetPatient(patient.PublicID)
	require.NoError(t, err)
	assert.True(t, visit.Equal(fetched.LastVisit))

	_, err = registry.RecordVisit("missing", visit)
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestDeletePatient(t *testing.T) {
	registry := newTestRegistry(t)

	patient, err := registry.AddPatient(Patient{FullName: "Ana"})
	require.NoError(t, err)

	tests := []struct {
		name          string
		publicID      string
		expectedError error
	}{
		{name: "Delete existing patient", publicID: patient.PublicID},
		{name: "Delete it again", publicID: patient.PublicID, expectedError: ErrPatientNotFound},
		{name: "Delete unknown patient", publicID: "nope", expectedError: ErrPatientNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := registry.DeletePatient(tt.publicID)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			assert.NoError(t, err)
		})
	}

	_, err = registry.GetPatient(patient.PublicID)
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestDistinctValues(t *testing.T) {
	registry := newTestRegistry(t)

	records := []Patient{
		{FullName: "Ana", Diagnosis: "Asthma", Practitioner: "Dr. Silva"},
		{FullName: "Beto", Diagnosis: "Hypertension"},
		{FullName: "Carla", Diagnosis: "Asthma", Practitioner: "Dr. Costa"},
		{FullName: "Dora", Diagnosis: "  "},
		{FullName: "Enzo", Diagnosis: "Migraine"},
	}
	for _, record := range records {
		_, err := registry.AddPatient(record)
		require.NoError(t, err)
	}

	diagnoses, err := registry.DistinctValues(FieldDiagnosis, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Migraine", "Asthma", "Hypertension"}, diagnoses)

	limited, err := registry.DistinctValues(FieldDiagnosis, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Migraine"}, limited)

	practitioners, err := registry.DistinctValues(FieldPractitioner, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dr. Costa", "Dr. Silva"}, practitioners)

	medications, err := registry.DistinctValues(FieldMedication, 10)
	require.NoError(t, err)
	assert.Empty(t, medications)

	_, err = registry.DistinctValues(Field(99), 10)
	assert.Error(t, err)
}

func TestDistinctValuesFollowVisits(t *testing.T) {
	registry := newTestRegistry(t)
	start := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

	var saved []*Patient
	for i, diagnosis := range []string{"Asthma", "Hypertension", "Migraine"} {
		p, err := registry.AddPatient(Patient{
			FullName:  "Patient",
			Diagnosis: diagnosis,
			LastVisit: start.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
		saved = append(saved, p)
	}

	diagnoses, err := registry.DistinctValues(FieldDiagnosis, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Migraine", "Hypertension", "Asthma"}, diagnoses)

	_, err = registry.RecordVisit(saved[0].PublicID, start.Add(24*time.Hour))
	require.NoError(t, err)

	diagnoses, err = registry.DistinctValues(FieldDiagnosis, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Asthma", "Migraine", "Hypertension"}, diagnoses)

	// Local times compare by instant, not by how they are written.
	ahead := time.FixedZone("UTC+3", 3*60*60)
	_, err = registry.RecordVisit(saved[1].PublicID, start.Add(25*time.Hour).In(ahead))
	require.NoError(t, err)

	diagnoses, err = registry.DistinctValues(FieldDiagnosis, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hypertension"}, diagnoses)
}

func TestFindPatients(t *testing.T) {
	registry := newTestRegistry(t)

	for _, name := range []string{"Ana Souza", "Beto Lima", "Anabela Rocha"} {
		_, err := registry.AddPatient(Patient{FullName: name})
		require.NoError(t, err)
	}

	found, err := registry.FindPatients("ana", 10)
	require.NoError(t, err)
	names := make([]string, len(found))
	for i, p := range found {
		names[i] = p.FullName
	}
	assert.ElementsMatch(t, []string{"Ana Souza", "Anabela Rocha"}, names)

	limited, err := registry.FindPatients("ana", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := registry.FindPatients("zzz", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFieldString(t *testing.T) {
	assert.Equal(t, "patient", FieldFullName.String())
	assert.Equal(t, "medication", FieldMedication.String())
	assert.Equal(t, "field(7)", Field(7).String())
}
