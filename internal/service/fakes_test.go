package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/sma-results-api/internal/models"
	"github.com/noah-isme/sma-results-api/internal/repository"
	"github.com/noah-isme/sma-results-api/pkg/jobs"
	"github.com/noah-isme/sma-results-api/pkg/notify"
)

type fakeResultStore struct {
	mu        sync.Mutex
	results   map[string]models.Result
	seq       int
	createErr error
	updateErr error
	updates   int
}

func newFakeResultStore(results ...models.Result) *fakeResultStore {
	store := &fakeResultStore{results: make(map[string]models.Result)}
	for _, r := range results {
		if r.Version == 0 {
			r.Version = 1
		}
		r.IsActive = r.Status != models.ResultStatusArchived
		store.results[r.ID] = r
	}
	return store
}

func (f *fakeResultStore) Create(ctx context.Context, result *models.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.results {
		if existing.IsActive && existing.StudentID == result.StudentID && existing.SchoolID == result.SchoolID &&
			existing.AcademicYear == result.AcademicYear && existing.Term == result.Term && existing.ExamType == result.ExamType {
			return repository.ErrDuplicate
		}
	}
	f.seq++
	result.ID = fmt.Sprintf("res-%d", f.seq)
	result.Version = 1
	result.IsActive = true
	f.results[result.ID] = *result
	return nil
}

func (f *fakeResultStore) FindByID(ctx context.Context, schoolID, id string) (*models.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.results[id]
	if !ok || r.SchoolID != schoolID {
		return nil, sql.ErrNoRows
	}
	return &r, nil
}

func (f *fakeResultStore) List(ctx context.Context, filter models.ResultFilter) ([]models.Result, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Result
	for _, r := range f.results {
		if r.SchoolID != filter.SchoolID || (!filter.IncludeArchived && !r.IsActive) {
			continue
		}
		if filter.ClassName != "" && r.ClassName != filter.ClassName {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (f *fakeResultStore) ListCohort(ctx context.Context, cohort models.Cohort) ([]models.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cohort(cohort), nil
}

func (f *fakeResultStore) cohort(cohort models.Cohort) []models.Result {
	var out []models.Result
	for _, r := range f.results {
		if r.IsActive && r.Cohort() == cohort {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out
}

func (f *fakeResultStore) Update(ctx context.Context, result *models.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	stored, ok := f.results[result.ID]
	if !ok || stored.Version != result.Version {
		return repository.ErrVersionConflict
	}
	result.Version++
	result.IsActive = result.Status != models.ResultStatusArchived
	f.results[result.ID] = *result
	f.updates++
	return nil
}

func (f *fakeResultStore) RankCohort(ctx context.Context, cohort models.Cohort, fn repository.RankFunc) ([]models.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out, err := fn(f.cohort(cohort))
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Version++
		f.results[out[i].ID] = out[i]
	}
	return out, nil
}

func (f *fakeResultStore) get(id string) models.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.results[id]
}

type fakeStudentStore struct {
	students  map[string]models.Student
	taken     map[string]bool
	createErr error
	created   []models.Student
}

func newFakeStudentStore(students ...models.Student) *fakeStudentStore {
	store := &fakeStudentStore{students: make(map[string]models.Student), taken: make(map[string]bool)}
	for _, s := range students {
		store.students[s.StudentID] = s
	}
	return store
}

func (f *fakeStudentStore) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	var out []models.Student
	for _, s := range f.students {
		if s.SchoolID == filter.SchoolID {
			out = append(out, s)
		}
	}
	return out, len(out), nil
}

func (f *fakeStudentStore) FindByID(ctx context.Context, schoolID, id string) (*models.Student, error) {
	for _, s := range f.students {
		if s.SchoolID == schoolID && (s.ID == id || s.StudentID == id) {
			student := s
			return &student, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStudentStore) Create(ctx context.Context, student *models.Student) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.taken[student.StudentID] {
		return repository.ErrDuplicate
	}
	student.ID = "stu-" + student.StudentID
	f.taken[student.StudentID] = true
	f.students[student.StudentID] = *student
	f.created = append(f.created, *student)
	return nil
}

type fakeSchoolStore struct {
	schools   map[string]models.School
	started   []models.Term
	createErr error
}

func newFakeSchoolStore(schools ...models.School) *fakeSchoolStore {
	store := &fakeSchoolStore{schools: make(map[string]models.School)}
	for _, s := range schools {
		store.schools[s.ID] = s
	}
	return store
}

func (f *fakeSchoolStore) FindByID(ctx context.Context, id string) (*models.School, error) {
	s, ok := f.schools[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (f *fakeSchoolStore) Create(ctx context.Context, school *models.School) error {
	if f.createErr != nil {
		return f.createErr
	}
	school.ID = fmt.Sprintf("school-%d", len(f.schools)+1)
	f.schools[school.ID] = *school
	return nil
}

func (f *fakeSchoolStore) UpdateGradingSystem(ctx context.Context, id string, system models.GradingSystem) error {
	s := f.schools[id]
	s.GradingSystem = system
	f.schools[id] = s
	return nil
}

func (f *fakeSchoolStore) UpdatePolicy(ctx context.Context, id string, policy models.SchoolPolicy) error {
	s := f.schools[id]
	s.Policy = policy
	f.schools[id] = s
	return nil
}

func (f *fakeSchoolStore) StartAcademicYear(ctx context.Context, school *models.School, terms []models.Term) error {
	f.schools[school.ID] = *school
	f.started = terms
	return nil
}

type fakeTermStore struct {
	terms     []models.Term
	createErr error
	activeErr error
}

func (f *fakeTermStore) List(ctx context.Context, filter models.TermFilter) ([]models.Term, error) {
	var out []models.Term
	for _, t := range f.terms {
		if t.SchoolID != filter.SchoolID {
			continue
		}
		if filter.AcademicYear != "" && t.AcademicYear != filter.AcademicYear {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTermStore) FindActive(ctx context.Context, schoolID string) (*models.Term, error) {
	for _, t := range f.terms {
		if t.SchoolID == schoolID && t.IsActive {
			term := t
			return &term, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeTermStore) Create(ctx context.Context, term *models.Term) error {
	if f.createErr != nil {
		return f.createErr
	}
	term.ID = fmt.Sprintf("term-%d", len(f.terms)+1)
	f.terms = append(f.terms, *term)
	return nil
}

func (f *fakeTermStore) SetActive(ctx context.Context, schoolID, id string) error {
	if f.activeErr != nil {
		return f.activeErr
	}
	found := false
	for _, t := range f.terms {
		if t.SchoolID == schoolID && t.ID == id {
			found = true
		}
	}
	if !found {
		return sql.ErrNoRows
	}
	for i := range f.terms {
		if f.terms[i].SchoolID == schoolID {
			f.terms[i].IsActive = f.terms[i].ID == id
		}
	}
	return nil
}

type fakeSequence struct {
	next int64
	err  error
}

func (f *fakeSequence) Next(ctx context.Context, schoolID, scope string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.next++
	return f.next, nil
}

type fakeCache struct {
	entries     map[string]interface{}
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]interface{})}
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	v, ok := f.entries[key]
	if !ok {
		return false, nil
	}
	if stats, ok := dest.(*models.ClassStatistics); ok {
		*stats = v.(models.ClassStatistics)
	}
	return true, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.entries[key] = value
	return nil
}

func (f *fakeCache) Invalidate(ctx context.Context, pattern string) error {
	f.invalidated = append(f.invalidated, pattern)
	delete(f.entries, pattern)
	return nil
}

type fakeQueue struct {
	jobs []jobs.Job
	err  error
}

func (f *fakeQueue) Enqueue(job jobs.Job) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

type fakeSender struct {
	sent []notify.Message
	err  error
}

func (f *fakeSender) Send(ctx context.Context, msg notify.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func uniformScores(score float64) models.ComponentScores {
	return models.ComponentScores{
		ClassWork:   score,
		Homework:    score,
		ClassTest:   score,
		Assignment:  score,
		Project:     score,
		MidTermExam: score,
		FinalExam:   score,
	}
}

func testSchool() models.School {
	return models.School{
		ID:            "school-1",
		Name:          "Hillcrest Academy",
		CurrentYear:   "2025/2026",
		GradingSystem: models.GradingSystem{Type: models.GradingTypePercentage, PassMarkDefault: 50},
		Settings:      models.SchoolSettings{EmailNotifications: true, NotificationEmail: "office@hillcrest.test"},
		IsActive:      true,
	}
}

func testStudent(code, first string) models.Student {
	return models.Student{
		ID:            "id-" + code,
		StudentID:     code,
		SchoolID:      "school-1",
		FirstName:     first,
		LastName:      "Okafor",
		Gender:        "Female",
		CurrentClass:  "JSS1A",
		GuardianEmail: "guardian-" + code + "@mail.test",
		Status:        models.StudentStatusActive,
	}
}
