package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/noah-isme/aula-admin-api/internal/models"
	"github.com/noah-isme/aula-admin-api/internal/repository"
)

// fakeTx backs every store with maps so service tests exercise real
// data flow without a database. Store interfaces share method names,
// hence the thin per-store wrapper types below.
type fakeTx struct {
	commissions map[string]*models.Commission
	enrollments map[string]*models.Enrollment
	students    map[string]*models.Student
	guardians   map[string]*models.Guardian
	teachers    map[string]*models.Teacher
	products    map[string]*models.Product
	houses      map[string]*models.House
	seq         int
}

func newFakeTx() *fakeTx {
	return &fakeTx{
		commissions: map[string]*models.Commission{},
		enrollments: map[string]*models.Enrollment{},
		students:    map[string]*models.Student{},
		guardians:   map[string]*models.Guardian{},
		teachers:    map[string]*models.Teacher{},
		products:    map[string]*models.Product{},
		houses:      map[string]*models.House{},
	}
}

func (f *fakeTx) nextID(prefix string) string {
	for {
		f.seq++
		id := fmt.Sprintf("%s-%d", prefix, f.seq)
		if f.commissions[id] == nil && f.enrollments[id] == nil &&
			f.students[id] == nil && f.guardians[id] == nil &&
			f.teachers[id] == nil && f.products[id] == nil && f.houses[id] == nil {
			return id
		}
	}
}

func (f *fakeTx) snapshot() *fakeTx {
	clone := newFakeTx()
	clone.seq = f.seq
	for k, v := range f.commissions {
		c := *v
		clone.commissions[k] = &c
	}
	for k, v := range f.enrollments {
		e := *v
		clone.enrollments[k] = &e
	}
	for k, v := range f.students {
		s := *v
		clone.students[k] = &s
	}
	for k, v := range f.guardians {
		g := *v
		clone.guardians[k] = &g
	}
	for k, v := range f.teachers {
		t := *v
		clone.teachers[k] = &t
	}
	for k, v := range f.products {
		p := *v
		clone.products[k] = &p
	}
	for k, v := range f.houses {
		h := *v
		clone.houses[k] = &h
	}
	return clone
}

func (f *fakeTx) restore(snap *fakeTx) {
	f.commissions = snap.commissions
	f.enrollments = snap.enrollments
	f.students = snap.students
	f.guardians = snap.guardians
	f.teachers = snap.teachers
	f.products = snap.products
	f.houses = snap.houses
	f.seq = snap.seq
}

func (f *fakeTx) usernameTaken(username string) bool {
	for _, student := range f.students {
		if student.Username == username {
			return true
		}
	}
	for _, guardian := range f.guardians {
		if guardian.Username == username {
			return true
		}
	}
	for _, teacher := range f.teachers {
		if teacher.Username == username {
			return true
		}
	}
	return false
}

func (f *fakeTx) countActive(commissionID string) int {
	count := 0
	for _, enrollment := range f.enrollments {
		if enrollment.CommissionID == commissionID && enrollment.State != models.EnrollmentStateCancelled {
			count++
		}
	}
	return count
}

func (f *fakeTx) enrollmentDetails(filter models.EnrollmentFilter) []models.EnrollmentDetail {
	var out []models.EnrollmentDetail
	for _, enrollment := range f.enrollments {
		if filter.CommissionID != "" && enrollment.CommissionID != filter.CommissionID {
			continue
		}
		if filter.StudentID != "" && enrollment.StudentID != filter.StudentID {
			continue
		}
		if filter.State != "" && enrollment.State != filter.State {
			continue
		}
		detail := models.EnrollmentDetail{Enrollment: *enrollment}
		if student, ok := f.students[enrollment.StudentID]; ok {
			detail.StudentFirstName = student.FirstName
			detail.StudentLastName = student.LastName
			detail.StudentUsername = student.Username
		}
		if commission, ok := f.commissions[enrollment.CommissionID]; ok {
			detail.CommissionName = commission.Name
		}
		out = append(out, detail)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeTx) Commissions() repository.CommissionStore { return fakeCommissions{f} }
func (f *fakeTx) Enrollments() repository.EnrollmentStore { return fakeEnrollments{f} }
func (f *fakeTx) Students() repository.StudentStore       { return fakeStudents{f} }
func (f *fakeTx) Guardians() repository.GuardianStore     { return fakeGuardians{f} }
func (f *fakeTx) Teachers() repository.TeacherStore       { return fakeTeachers{f} }
func (f *fakeTx) Identities() repository.IdentityStore    { return fakeIdentities{f} }
func (f *fakeTx) Products() repository.ProductStore       { return fakeProducts{f} }
func (f *fakeTx) Houses() repository.HouseStore           { return fakeHouses{f} }

type fakeCommissions struct{ tx *fakeTx }

func (s fakeCommissions) FindByID(_ context.Context, id string) (*models.Commission, error) {
	commission, ok := s.tx.commissions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := *commission
	return &c, nil
}

func (s fakeCommissions) LockByID(ctx context.Context, id string) (*models.Commission, error) {
	return s.FindByID(ctx, id)
}

func (s fakeCommissions) FindDetailByID(ctx context.Context, id string) (*models.CommissionDetail, error) {
	commission, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	occupied := s.tx.countActive(id)
	detail := &models.CommissionDetail{Commission: *commission, OccupiedSeats: occupied}
	if product, ok := s.tx.products[commission.ProductID]; ok {
		detail.ProductName = product.Name
	}
	if commission.MaxSeats != nil {
		available := *commission.MaxSeats - occupied
		detail.AvailableSeats = &available
	}
	return detail, nil
}

func (s fakeCommissions) List(_ context.Context, filter models.CommissionFilter) ([]models.CommissionDetail, int, error) {
	var out []models.CommissionDetail
	for _, commission := range s.tx.commissions {
		if filter.ProductID != "" && commission.ProductID != filter.ProductID {
			continue
		}
		if filter.Active != nil && commission.Active != *filter.Active {
			continue
		}
		out = append(out, models.CommissionDetail{Commission: *commission})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (s fakeCommissions) Create(_ context.Context, commission *models.Commission) error {
	if commission.ID == "" {
		commission.ID = s.tx.nextID("com")
	}
	c := *commission
	s.tx.commissions[commission.ID] = &c
	return nil
}

func (s fakeCommissions) Update(_ context.Context, commission *models.Commission) error {
	if _, ok := s.tx.commissions[commission.ID]; !ok {
		return sql.ErrNoRows
	}
	c := *commission
	s.tx.commissions[commission.ID] = &c
	return nil
}

func (s fakeCommissions) Deactivate(_ context.Context, id string) error {
	commission, ok := s.tx.commissions[id]
	if !ok {
		return sql.ErrNoRows
	}
	commission.Active = false
	return nil
}

type fakeEnrollments struct{ tx *fakeTx }

func (s fakeEnrollments) List(_ context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	details := s.tx.enrollmentDetails(filter)
	return details, len(details), nil
}

func (s fakeEnrollments) FindByID(_ context.Context, id string) (*models.Enrollment, error) {
	enrollment, ok := s.tx.enrollments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	e := *enrollment
	return &e, nil
}

func (s fakeEnrollments) CountActive(_ context.Context, commissionID string) (int, error) {
	return s.tx.countActive(commissionID), nil
}

func (s fakeEnrollments) FindActiveStudentIDs(_ context.Context, commissionID string, studentIDs []string) ([]string, error) {
	requested := make(map[string]struct{}, len(studentIDs))
	for _, id := range studentIDs {
		requested[id] = struct{}{}
	}
	var out []string
	for _, enrollment := range s.tx.enrollments {
		if enrollment.CommissionID != commissionID || enrollment.State == models.EnrollmentStateCancelled {
			continue
		}
		if _, ok := requested[enrollment.StudentID]; ok {
			out = append(out, enrollment.StudentID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s fakeEnrollments) CreateBatch(_ context.Context, enrollments []*models.Enrollment) error {
	for _, enrollment := range enrollments {
		for _, existing := range s.tx.enrollments {
			if existing.CommissionID == enrollment.CommissionID &&
				existing.StudentID == enrollment.StudentID &&
				existing.State != models.EnrollmentStateCancelled {
				return repository.ErrDuplicate
			}
		}
		if enrollment.ID == "" {
			enrollment.ID = s.tx.nextID("enr")
		}
		if enrollment.State == "" {
			enrollment.State = models.EnrollmentStatePending
		}
		e := *enrollment
		s.tx.enrollments[enrollment.ID] = &e
	}
	return nil
}

func (s fakeEnrollments) UpdateState(_ context.Context, id string, state models.EnrollmentState, notes *string) error {
	enrollment, ok := s.tx.enrollments[id]
	if !ok {
		return sql.ErrNoRows
	}
	enrollment.State = state
	if notes != nil {
		enrollment.Notes = notes
	}
	return nil
}

func (s fakeEnrollments) Delete(_ context.Context, id string) error {
	if _, ok := s.tx.enrollments[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.tx.enrollments, id)
	return nil
}

func (s fakeEnrollments) Roster(_ context.Context, commissionID string) ([]models.EnrollmentDetail, error) {
	var out []models.EnrollmentDetail
	for _, detail := range s.tx.enrollmentDetails(models.EnrollmentFilter{CommissionID: commissionID}) {
		if detail.State == models.EnrollmentStateCancelled {
			continue
		}
		out = append(out, detail)
	}
	return out, nil
}

type fakeStudents struct{ tx *fakeTx }

func (s fakeStudents) FindByID(_ context.Context, id string) (*models.Student, error) {
	student, ok := s.tx.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	st := *student
	return &st, nil
}

func (s fakeStudents) FindByIDs(_ context.Context, ids []string) ([]models.Student, error) {
	var out []models.Student
	for _, id := range ids {
		if student, ok := s.tx.students[id]; ok {
			out = append(out, *student)
		}
	}
	return out, nil
}

func (s fakeStudents) List(_ context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	var out []models.Student
	for _, student := range s.tx.students {
		if filter.GuardianID != "" && student.GuardianID != filter.GuardianID {
			continue
		}
		out = append(out, *student)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (s fakeStudents) Create(_ context.Context, student *models.Student) error {
	if s.tx.usernameTaken(student.Username) {
		return repository.ErrDuplicate
	}
	if student.ID == "" {
		student.ID = s.tx.nextID("stu")
	}
	st := *student
	s.tx.students[student.ID] = &st
	return nil
}

type fakeGuardians struct{ tx *fakeTx }

func (s fakeGuardians) FindByID(_ context.Context, id string) (*models.Guardian, error) {
	guardian, ok := s.tx.guardians[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	g := *guardian
	return &g, nil
}

func (s fakeGuardians) FindByEmail(_ context.Context, email string) (*models.Guardian, error) {
	for _, guardian := range s.tx.guardians {
		if guardian.Email != nil && strings.EqualFold(*guardian.Email, email) {
			g := *guardian
			return &g, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s fakeGuardians) FindByDNI(_ context.Context, dni string) (*models.Guardian, error) {
	for _, guardian := range s.tx.guardians {
		if guardian.DNI != nil && *guardian.DNI == dni {
			g := *guardian
			return &g, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s fakeGuardians) Create(_ context.Context, guardian *models.Guardian) error {
	if s.tx.usernameTaken(guardian.Username) {
		return repository.ErrDuplicate
	}
	if guardian.ID == "" {
		guardian.ID = s.tx.nextID("gua")
	}
	g := *guardian
	s.tx.guardians[guardian.ID] = &g
	return nil
}

type fakeTeachers struct{ tx *fakeTx }

func (s fakeTeachers) FindByID(_ context.Context, id string) (*models.Teacher, error) {
	teacher, ok := s.tx.teachers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	t := *teacher
	return &t, nil
}

func (s fakeTeachers) FindByEmail(_ context.Context, email string) (*models.Teacher, error) {
	for _, teacher := range s.tx.teachers {
		if strings.EqualFold(teacher.Email, email) {
			t := *teacher
			return &t, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s fakeTeachers) List(_ context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	var out []models.Teacher
	for _, teacher := range s.tx.teachers {
		if filter.Active != nil && teacher.Active != *filter.Active {
			continue
		}
		out = append(out, *teacher)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (s fakeTeachers) Create(_ context.Context, teacher *models.Teacher) error {
	if s.tx.usernameTaken(teacher.Username) {
		return repository.ErrDuplicate
	}
	if teacher.ID == "" {
		teacher.ID = s.tx.nextID("tea")
	}
	t := *teacher
	s.tx.teachers[teacher.ID] = &t
	return nil
}

type fakeIdentities struct{ tx *fakeTx }

func (s fakeIdentities) UsernameTaken(_ context.Context, username string) (bool, error) {
	return s.tx.usernameTaken(username), nil
}

func (s fakeIdentities) ListTemporaryCredentials(_ context.Context) ([]models.TemporaryCredential, error) {
	var out []models.TemporaryCredential
	for _, student := range s.tx.students {
		if student.MustChangePassword && student.TemporaryPassword != nil {
			out = append(out, models.TemporaryCredential{
				AccountID: student.ID, Kind: "student", FullName: student.FullName(),
				Username: student.Username, TemporaryPassword: *student.TemporaryPassword,
			})
		}
	}
	for _, guardian := range s.tx.guardians {
		if guardian.MustChangePassword && guardian.TemporaryPassword != nil {
			out = append(out, models.TemporaryCredential{
				AccountID: guardian.ID, Kind: "guardian", FullName: guardian.FullName(),
				Username: guardian.Username, TemporaryPassword: *guardian.TemporaryPassword,
			})
		}
	}
	for _, teacher := range s.tx.teachers {
		if teacher.MustChangePassword && teacher.TemporaryPassword != nil {
			out = append(out, models.TemporaryCredential{
				AccountID: teacher.ID, Kind: "teacher", FullName: teacher.FullName(),
				Username: teacher.Username, TemporaryPassword: *teacher.TemporaryPassword,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out, nil
}

type fakeProducts struct{ tx *fakeTx }

func (s fakeProducts) FindByID(_ context.Context, id string) (*models.Product, error) {
	product, ok := s.tx.products[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	p := *product
	return &p, nil
}

type fakeHouses struct{ tx *fakeTx }

func (s fakeHouses) FindByID(_ context.Context, id string) (*models.House, error) {
	house, ok := s.tx.houses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	h := *house
	return &h, nil
}

// fakeUow runs Within against the shared fakeTx, restoring the
// pre-transaction snapshot when fn fails so atomicity is observable
// in tests.
type fakeUow struct {
	tx *fakeTx
}

func newFakeUow() *fakeUow {
	return &fakeUow{tx: newFakeTx()}
}

func (u *fakeUow) View() repository.Tx { return u.tx }

func (u *fakeUow) Within(_ context.Context, fn func(tx repository.Tx) error) error {
	snap := u.tx.snapshot()
	if err := fn(u.tx); err != nil {
		u.tx.restore(snap)
		return err
	}
	return nil
}
