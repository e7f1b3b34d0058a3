package service

import (
	"context"
	"fmt"

	"stackit/internal/models"
	"stackit/internal/repository"
)

// Stub repositories with overridable behavior per test. Unset functions
// return zero values.

type stubAnswerRepo struct {
	createFn   func(a *models.Answer) error
	getByIDFn  func(id uint) (*models.Answer, error)
	deleteFn   func(a *models.Answer) error
	hasVotedFn func(userID, answerID uint) (bool, error)
	castVoteFn func(userID, answerID uint, voteType string) error
	acceptFn   func(questionID, answerID uint) error
	toggleFn   func(questionID, answerID uint) (bool, error)
}

var _ repository.AnswerRepository = (*stubAnswerRepo)(nil)

func (s *stubAnswerRepo) Create(_ context.Context, a *models.Answer) error {
	if s.createFn != nil {
		return s.createFn(a)
	}
	if a.ID == 0 {
		a.ID = 1
	}
	return nil
}

func (s *stubAnswerRepo) GetByID(_ context.Context, id uint) (*models.Answer, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(id)
	}
	return nil, models.NewNotFoundError("Answer", id)
}

func (s *stubAnswerRepo) Delete(_ context.Context, a *models.Answer) error {
	if s.deleteFn != nil {
		return s.deleteFn(a)
	}
	return nil
}

func (s *stubAnswerRepo) HasVoted(_ context.Context, userID, answerID uint) (bool, error) {
	if s.hasVotedFn != nil {
		return s.hasVotedFn(userID, answerID)
	}
	return false, nil
}

func (s *stubAnswerRepo) CastVote(_ context.Context, userID, answerID uint, voteType string) error {
	if s.castVoteFn != nil {
		return s.castVoteFn(userID, answerID, voteType)
	}
	return nil
}

func (s *stubAnswerRepo) AcceptAnswer(_ context.Context, questionID, answerID uint) error {
	if s.acceptFn != nil {
		return s.acceptFn(questionID, answerID)
	}
	return nil
}

func (s *stubAnswerRepo) ToggleAccepted(_ context.Context, questionID, answerID uint) (bool, error) {
	if s.toggleFn != nil {
		return s.toggleFn(questionID, answerID)
	}
	return true, nil
}

func (s *stubAnswerRepo) CountByUser(context.Context, uint) (int64, error) {
	return 0, nil
}

func (s *stubAnswerRepo) RecentByUser(context.Context, uint, int) ([]models.Answer, error) {
	return nil, nil
}

type stubQuestionRepo struct {
	createFn  func(q *models.Question) error
	getByIDFn func(id uint) (*models.Question, error)
	listFn    func(q repository.ListQuery) ([]models.Question, int64, error)
	deleteFn  func(id uint) error
}

var _ repository.QuestionRepository = (*stubQuestionRepo)(nil)

func (s *stubQuestionRepo) Create(_ context.Context, q *models.Question) error {
	if s.createFn != nil {
		return s.createFn(q)
	}
	if q.ID == 0 {
		q.ID = 1
	}
	return nil
}

func (s *stubQuestionRepo) GetByID(_ context.Context, id uint) (*models.Question, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(id)
	}
	return nil, models.NewNotFoundError("Question", id)
}

func (s *stubQuestionRepo) List(_ context.Context, q repository.ListQuery) ([]models.Question, int64, error) {
	if s.listFn != nil {
		return s.listFn(q)
	}
	return nil, 0, nil
}

func (s *stubQuestionRepo) Delete(_ context.Context, id uint) error {
	if s.deleteFn != nil {
		return s.deleteFn(id)
	}
	return nil
}

func (s *stubQuestionRepo) CountByUser(context.Context, uint) (int64, error) {
	return 0, nil
}

func (s *stubQuestionRepo) CountAcceptedForUser(context.Context, uint) (int64, error) {
	return 0, nil
}

func (s *stubQuestionRepo) RecentByUser(context.Context, uint, int) ([]models.Question, error) {
	return nil, nil
}

// stubUserRepo resolves users from an in-memory set.
type stubUserRepo struct {
	users map[uint]*models.User
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

func newStubUserRepo(users ...*models.User) *stubUserRepo {
	m := make(map[uint]*models.User, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	return &stubUserRepo{users: m}
}

func (s *stubUserRepo) Create(_ context.Context, user *models.User) error {
	s.users[user.ID] = user
	return nil
}

func (s *stubUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, models.NewNotFoundError("User", id)
}

func (s *stubUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (s *stubUserRepo) GetByName(_ context.Context, name string) (*models.User, error) {
	for _, u := range s.users {
		if u.Name == name {
			return u, nil
		}
	}
	return nil, nil
}

func (s *stubUserRepo) GetByNames(_ context.Context, names []string) ([]models.User, error) {
	var out []models.User
	for _, name := range names {
		for _, u := range s.users {
			if u.Name == name {
				out = append(out, *u)
			}
		}
	}
	return out, nil
}

func (s *stubUserRepo) Update(_ context.Context, user *models.User) error {
	s.users[user.ID] = user
	return nil
}

// stubCommentRepo stores comments in memory.
type stubCommentRepo struct {
	comments map[uint]*models.Comment
	nextID   uint
}

var _ repository.CommentRepository = (*stubCommentRepo)(nil)

func newStubCommentRepo() *stubCommentRepo {
	return &stubCommentRepo{comments: make(map[uint]*models.Comment), nextID: 1}
}

func (s *stubCommentRepo) Create(_ context.Context, comment *models.Comment) error {
	comment.ID = s.nextID
	s.nextID++
	s.comments[comment.ID] = comment
	return nil
}

func (s *stubCommentRepo) GetByID(_ context.Context, id uint) (*models.Comment, error) {
	if c, ok := s.comments[id]; ok {
		return c, nil
	}
	return nil, models.NewNotFoundError("Comment", id)
}

type stubTagRepo struct {
	tags map[string]*models.Tag
}

var _ repository.TagRepository = (*stubTagRepo)(nil)

func newStubTagRepo(names ...string) *stubTagRepo {
	s := &stubTagRepo{tags: make(map[string]*models.Tag)}
	for i, name := range names {
		normalized := models.NormalizeTagName(name)
		s.tags[normalized] = &models.Tag{ID: uint(i + 1), Name: normalized}
	}
	return s
}

func (s *stubTagRepo) List(context.Context) ([]models.Tag, error) {
	var out []models.Tag
	for _, t := range s.tags {
		out = append(out, *t)
	}
	return out, nil
}

func (s *stubTagRepo) GetByName(_ context.Context, name string) (*models.Tag, error) {
	if t, ok := s.tags[models.NormalizeTagName(name)]; ok {
		return t, nil
	}
	return nil, nil
}

func (s *stubTagRepo) Create(_ context.Context, name string) (*models.Tag, error) {
	normalized := models.NormalizeTagName(name)
	if _, ok := s.tags[normalized]; ok {
		return nil, models.NewConflictError("Tag already exists")
	}
	tag := &models.Tag{ID: uint(len(s.tags) + 1), Name: normalized}
	s.tags[normalized] = tag
	return tag, nil
}

func (s *stubTagRepo) GetOrCreate(_ context.Context, name string) (*models.Tag, error) {
	normalized := models.NormalizeTagName(name)
	if t, ok := s.tags[normalized]; ok {
		return t, nil
	}
	tag := &models.Tag{ID: uint(len(s.tags) + 1), Name: normalized}
	s.tags[normalized] = tag
	return tag, nil
}

func (s *stubTagRepo) Popular(context.Context, int) ([]models.Tag, error) {
	return nil, nil
}

// notifyRecorder captures notification fan-out for assertions.
type notifyRecorder struct {
	calls []notifyCall
}

type notifyCall struct {
	userID  uint
	kind    string
	message string
}

func (r *notifyRecorder) fn() NotifyFunc {
	return func(_ context.Context, userID uint, kind, message string) {
		r.calls = append(r.calls, notifyCall{userID: userID, kind: kind, message: message})
	}
}

func (r *notifyRecorder) kindsFor(userID uint) []string {
	var kinds []string
	for _, c := range r.calls {
		if c.userID == userID {
			kinds = append(kinds, c.kind)
		}
	}
	return kinds
}

func voteKey(userID, answerID uint) string {
	return fmt.Sprintf("%d:%d", userID, answerID)
}
