package registry

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrNameRequired    = errors.New("patient name is required")
)

type Registry struct {
	db *gorm.DB
}

type Patient struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time `gorm:"index"`

	PublicID     string `gorm:"uniqueIndex"`
	FullName     string `gorm:"index"`
	Practitioner string
	Diagnosis    string
	Medication   string
	LastVisit    time.Time
}

// Field names a patient attribute that the intake form offers suggestions for.
type Field int

const (
	FieldFullName Field = iota
	FieldPractitioner
	FieldDiagnosis
	FieldMedication
)

var fieldColumns = map[Field]string{
	FieldFullName:     "full_name",
	FieldPractitioner: "practitioner",
	FieldDiagnosis:    "diagnosis",
	FieldMedication:   "medication",
}

func (f Field) String() string {
	switch f {
	case FieldFullName:
		return "patient"
	case FieldPractitioner:
		return "practitioner"
	case FieldDiagnosis:
		return "diagnosis"
	case FieldMedication:
		return "medication"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

func NewRegistry(dbFilePath string) (*Registry, error) {
	db, err := gorm.Open(sqlite.Open(dbFilePath), &gorm.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database")
		return nil, err
	}

	if err := db.AutoMigrate(&Patient{}); err != nil {
		return nil, err
	}

	return &Registry{
		db: db,
	}, nil
}

// Close closes the database connection.
func (registry *Registry) Close() error {
	sqlDB, err := registry.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AddPatient stores a new patient record. Text fields are trimmed, a public ID
// is assigned and LastVisit defaults to now. Times are stored in UTC so they
// order correctly as text.
func (registry *Registry) AddPatient(patient Patient) (*Patient, error) {
	patient.FullName = strings.TrimSpace(patient.FullName)
	patient.Practitioner = strings.TrimSpace(patient.Practitioner)
	patient.Diagnosis = strings.TrimSpace(patient.Diagnosis)
	patient.Medication = strings.TrimSpace(patient.Medication)

	if patient.FullName == "" {
		return nil, ErrNameRequired
	}

	patient.ID = 0
	patient.PublicID = uuid.NewString()
	if patient.LastVisit.IsZero() {
		patient.LastVisit = time.Now()
	}
	patient.LastVisit = patient.LastVisit.UTC()

	result := registry.db.Create(&patient)
	if result.Error != nil {
		return nil, result.Error
	}

	return &patient, nil
}

func (registry *Registry) GetPatient(publicID string) (*Patient, error) {
	var patient Patient
	result := registry.db.Where("public_id = ?", publicID).Limit(1).Find(&patient)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: %s", ErrPatientNotFound, publicID)
	}

	return &patient, nil
}

// RecordVisit moves a patient's last visit to the given time.
func (registry *Registry) RecordVisit(publicID string, at time.Time) (*Patient, error) {
	patient, err := registry.GetPatient(publicID)
	if err != nil {
		return nil, err
	}

	patient.LastVisit = at.UTC()
	result := registry.db.Save(patient)
	if result.Error != nil {
		return nil, result.Error
	}

	return patient, nil
}

// GetRecentPatients returns up to limit patients, most recently added first.
func (registry *Registry) GetRecentPatients(limit int) ([]Patient, error) {
	var patients []Patient
	result := registry.db.Order("id desc").Limit(limit).Find(&patients)
	if result.Error != nil {
		return nil, result.Error
	}

	return patients, nil
}

func (registry *Registry) DeletePatient(publicID string) error {
	result := registry.db.Where("public_id = ?", publicID).Delete(&Patient{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrPatientNotFound, publicID)
	}

	return nil
}

// DistinctValues returns up to limit distinct non-blank values of field, the
// one whose latest patient visit is most recent first.
func (registry *Registry) DistinctValues(field Field, limit int) ([]string, error) {
	column, ok := fieldColumns[field]
	if !ok {
		return nil, fmt.Errorf("unknown patient field %s", field)
	}

	var values []string
	result := registry.db.Model(&Patient{}).
		Where(column+" <> ''").
		Group(column).
		Order("MAX(last_visit) desc, MAX(id) desc").
		Limit(limit).
		Pluck(column, &values)
	if result.Error != nil {
		return nil, result.Error
	}

	return values, nil
}

// FindPatients ranks patients by how well their name fuzzily matches query.
func (registry *Registry) FindPatients(query string, limit int) ([]Patient, error) {
	var patients []Patient
	result := registry.db.Order("id desc").Find(&patients)
	if result.Error != nil {
		return nil, result.Error
	}

	names := lo.Map(patients, func(p Patient, _ int) string {
		return p.FullName
	})

	matches := fuzzy.Find(query, names)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	return lo.Map(matches, func(match fuzzy.Match, _ int) Patient {
		return patients[match.Index]
	}), nil
}
