package inmemdb

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/edumanage/edurisk/core/student"
)

type studentRepository struct {
	db *studentTable
}

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		students = append(students, *s)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].PRN < students[j].PRN })
	return students
}

func (repo *studentRepository) CreateStudent(s student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, exists := repo.db.table[s.PRN]; exists {
		return student.Student{}, student.ErrPRNExists
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = now
	}
	repo.db.table[s.PRN] = &s
	return s, nil
}

func (repo *studentRepository) GetStudentByPRN(prn string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.table[prn]; ok {
		return *s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryAllStudents() ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *studentRepository) FilterStudents(filter student.QueryFilter) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, 0)
	for _, s := range repo.query() {
		if filter.Division != "" && s.Division != filter.Division {
			continue
		}
		if filter.MinRiskScore != nil && s.RiskScore < *filter.MinRiskScore {
			continue
		}
		students = append(students, s)
	}
	return students, nil
}

func (repo *studentRepository) SaveStudents(students ...student.Student) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for i := range students {
		s := students[i]
		repo.db.table[s.PRN] = &s
	}
	return nil
}

func (repo *studentRepository) DeleteStudentsByPRN(prns ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, prn := range prns {
		delete(repo.db.table, prn)
	}
	return nil
}

func (repo *studentRepository) ClearUploadedFields() error {
	repo.db.Lock()
	defer repo.db.Unlock()

	now := time.Now().UTC()
	for _, s := range repo.db.table {
		s.CGPA = null.Float64{}
		s.Attendance = null.Float64{}
		s.MidsemMarks = null.Float64{}
		s.EndsemMarks = null.Float64{}
		s.Backlogs = 0
		s.Disciplinary = false
		s.RiskScore = 0
		s.RiskLevel = ""
		s.RiskReasons = nil
		s.UpdatedAt = now
	}
	return nil
}

func (repo *studentRepository) ReplaceAllStudents(students ...student.Student) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	now := time.Now().UTC()
	table := make(map[string]*student.Student, len(students))
	for i := range students {
		s := students[i]
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		if s.UpdatedAt.IsZero() {
			s.UpdatedAt = now
		}
		table[s.PRN] = &s
	}
	repo.db.table = table
	return nil
}

type uploadLogRepository struct {
	db *uploadTable
}

func NewUploadLogRepository(db *DB) student.UploadLogRepository {
	return &uploadLogRepository{db: db.upload}
}

func (repo *uploadLogRepository) LogUpload(entry student.UploadLog) (student.UploadLog, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	repo.db.table[entry.ID] = &entry
	return entry, nil
}

func (repo *uploadLogRepository) QueryUploads(division string) ([]student.UploadLog, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	entries := make([]student.UploadLog, 0, len(repo.db.table))
	for _, entry := range repo.db.table {
		if division != "" && entry.Division != division {
			continue
		}
		entries = append(entries, *entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].UploadedAt.After(entries[j].UploadedAt) })
	return entries, nil
}
