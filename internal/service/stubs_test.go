package service

import (
	"context"
	"sync"
	"time"

	"alumnet/internal/models"
)

// Repository stubs: a nil func field returns zero values.

type userRepoStub struct {
	getByIDFn           func(context.Context, uint) (*models.User, error)
	getByEmailFn        func(context.Context, string) (*models.User, error)
	getByUsernameFn     func(context.Context, string) (*models.User, error)
	getByLoginFn        func(context.Context, string) (*models.User, error)
	getProfileFn        func(context.Context, string) (*models.PublicProfile, error)
	createFn            func(context.Context, *models.User) error
	updateFieldsFn      func(context.Context, *models.User, map[string]interface{}) error
	setPasswordFn       func(context.Context, uint, string) error
	addActivityFn       func(context.Context, uint, int) error
	listFn              func(context.Context, models.UserFilter) ([]models.User, int64, error)
	leaderboardFn       func(context.Context, int) ([]models.PublicProfile, error)
	topLikedFn          func(context.Context, int) ([]models.DepartmentRanking, error)
	likeAlumnusFn       func(context.Context, uint, uint) (*models.User, error)
	activeNonAdminIDsFn func(context.Context) ([]uint, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if s.getByIDFn == nil {
		return nil, models.NewNotFoundError("User", id)
	}
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.getByEmailFn == nil {
		return nil, nil
	}
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.getByUsernameFn == nil {
		return nil, nil
	}
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	if s.getByLoginFn == nil {
		return nil, nil
	}
	return s.getByLoginFn(ctx, login)
}
func (s *userRepoStub) GetProfile(ctx context.Context, username string) (*models.PublicProfile, error) {
	if s.getProfileFn == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return s.getProfileFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, user)
}
func (s *userRepoStub) UpdateFields(ctx context.Context, user *models.User, fields map[string]interface{}) error {
	if s.updateFieldsFn == nil {
		return nil
	}
	return s.updateFieldsFn(ctx, user, fields)
}
func (s *userRepoStub) SetPassword(ctx context.Context, id uint, hash string) error {
	if s.setPasswordFn == nil {
		return nil
	}
	return s.setPasswordFn(ctx, id, hash)
}
func (s *userRepoStub) AddActivity(ctx context.Context, id uint, delta int) error {
	if s.addActivityFn == nil {
		return nil
	}
	return s.addActivityFn(ctx, id, delta)
}
func (s *userRepoStub) List(ctx context.Context, filter models.UserFilter) ([]models.User, int64, error) {
	if s.listFn == nil {
		return nil, 0, nil
	}
	return s.listFn(ctx, filter)
}
func (s *userRepoStub) Leaderboard(ctx context.Context, limit int) ([]models.PublicProfile, error) {
	if s.leaderboardFn == nil {
		return nil, nil
	}
	return s.leaderboardFn(ctx, limit)
}
func (s *userRepoStub) TopLikedByDepartment(ctx context.Context, per int) ([]models.DepartmentRanking, error) {
	if s.topLikedFn == nil {
		return nil, nil
	}
	return s.topLikedFn(ctx, per)
}
func (s *userRepoStub) LikeAlumnus(ctx context.Context, likerID, alumnusID uint) (*models.User, error) {
	if s.likeAlumnusFn == nil {
		return nil, models.NewNotFoundError("Alumnus", alumnusID)
	}
	return s.likeAlumnusFn(ctx, likerID, alumnusID)
}
func (s *userRepoStub) ActiveNonAdminIDs(ctx context.Context) ([]uint, error) {
	if s.activeNonAdminIDsFn == nil {
		return nil, nil
	}
	return s.activeNonAdminIDsFn(ctx)
}

// usersByName serves GetByUsername and GetByID from a fixed set of users.
func usersByName(users ...*models.User) *userRepoStub {
	byName := map[string]*models.User{}
	byID := map[uint]*models.User{}
	for _, u := range users {
		byName[u.Username] = u
		byID[u.ID] = u
	}
	return &userRepoStub{
		getByUsernameFn: func(_ context.Context, name string) (*models.User, error) {
			return byName[name], nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			if u, ok := byID[id]; ok {
				return u, nil
			}
			return nil, models.NewNotFoundError("User", id)
		},
	}
}

type connRepoStub struct {
	createFn          func(context.Context, *models.Connection) error
	getBetweenFn      func(context.Context, uint, uint) (*models.Connection, error)
	listPendingFn     func(context.Context, uint) ([]models.PendingRequest, error)
	listSentFn        func(context.Context, uint) ([]models.SentRequest, error)
	acceptFn          func(context.Context, uint, uint, int, time.Time) (*models.Connection, error)
	ignoreFn          func(context.Context, uint, uint, time.Time) (*models.Connection, error)
	deleteAcceptedFn  func(context.Context, uint, uint) (*models.Connection, error)
	listConnectionsFn func(context.Context, uint) ([]models.ConnectionUser, error)
	listSuggestionsFn func(context.Context, uint, int) ([]models.ConnectionUser, error)
}

func (s *connRepoStub) Create(ctx context.Context, conn *models.Connection) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, conn)
}
func (s *connRepoStub) GetBetween(ctx context.Context, a, b uint) (*models.Connection, error) {
	if s.getBetweenFn == nil {
		return nil, nil
	}
	return s.getBetweenFn(ctx, a, b)
}
func (s *connRepoStub) ListPendingFor(ctx context.Context, id uint) ([]models.PendingRequest, error) {
	if s.listPendingFn == nil {
		return nil, nil
	}
	return s.listPendingFn(ctx, id)
}
func (s *connRepoStub) ListSentBy(ctx context.Context, id uint) ([]models.SentRequest, error) {
	if s.listSentFn == nil {
		return nil, nil
	}
	return s.listSentFn(ctx, id)
}
func (s *connRepoStub) Accept(ctx context.Context, receiverID, requesterID uint, reward int, now time.Time) (*models.Connection, error) {
	return s.acceptFn(ctx, receiverID, requesterID, reward, now)
}
func (s *connRepoStub) Ignore(ctx context.Context, receiverID, requesterID uint, now time.Time) (*models.Connection, error) {
	return s.ignoreFn(ctx, receiverID, requesterID, now)
}
func (s *connRepoStub) DeleteAccepted(ctx context.Context, a, b uint) (*models.Connection, error) {
	return s.deleteAcceptedFn(ctx, a, b)
}
func (s *connRepoStub) ListConnections(ctx context.Context, id uint) ([]models.ConnectionUser, error) {
	if s.listConnectionsFn == nil {
		return nil, nil
	}
	return s.listConnectionsFn(ctx, id)
}
func (s *connRepoStub) ListSuggestions(ctx context.Context, id uint, limit int) ([]models.ConnectionUser, error) {
	if s.listSuggestionsFn == nil {
		return nil, nil
	}
	return s.listSuggestionsFn(ctx, id, limit)
}

type modRepoStub struct {
	submitFn          func(context.Context, models.UnverifiedItem) error
	listPendingFn     func(context.Context, models.ItemType) ([]models.UnverifiedItem, error)
	approveFn         func(context.Context, models.ItemType, uint, uint, time.Time) (models.VerifiedItem, error)
	rejectFn          func(context.Context, models.ItemType, uint, uint, time.Time) (models.UnverifiedItem, error)
	listBySubmitterFn func(context.Context, uint) ([]models.SubmissionSummary, error)
}

func (s *modRepoStub) Submit(ctx context.Context, item models.UnverifiedItem) error {
	if s.submitFn == nil {
		return nil
	}
	return s.submitFn(ctx, item)
}
func (s *modRepoStub) ListPending(ctx context.Context, t models.ItemType) ([]models.UnverifiedItem, error) {
	if s.listPendingFn == nil {
		return nil, nil
	}
	return s.listPendingFn(ctx, t)
}
func (s *modRepoStub) Approve(ctx context.Context, t models.ItemType, id, adminID uint, now time.Time) (models.VerifiedItem, error) {
	return s.approveFn(ctx, t, id, adminID, now)
}
func (s *modRepoStub) Reject(ctx context.Context, t models.ItemType, id, adminID uint, now time.Time) (models.UnverifiedItem, error) {
	return s.rejectFn(ctx, t, id, adminID, now)
}
func (s *modRepoStub) ListBySubmitter(ctx context.Context, id uint) ([]models.SubmissionSummary, error) {
	if s.listBySubmitterFn == nil {
		return nil, nil
	}
	return s.listBySubmitterFn(ctx, id)
}

type listingRepoStub struct {
	createFn      func(context.Context, models.VerifiedItem) error
	internshipsFn func(context.Context, *models.Date) ([]models.Internship, error)
	hackathonsFn  func(context.Context, *models.Date) ([]models.Hackathon, error)
	feedFn        func(context.Context, int) ([]models.FeedEvent, error)
}

func (s *listingRepoStub) Create(ctx context.Context, item models.VerifiedItem) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, item)
}
func (s *listingRepoStub) Get(_ context.Context, t models.ItemType, id uint) (models.VerifiedItem, error) {
	return nil, models.NewNotFoundError(string(t), id)
}
func (s *listingRepoStub) ListJobs(context.Context, int, int) ([]models.Job, error) {
	return nil, nil
}
func (s *listingRepoStub) ListInternships(ctx context.Context, from *models.Date) ([]models.Internship, error) {
	if s.internshipsFn == nil {
		return nil, nil
	}
	return s.internshipsFn(ctx, from)
}
func (s *listingRepoStub) ListCareerFairs(context.Context, *models.Date) ([]models.CareerFair, error) {
	return nil, nil
}
func (s *listingRepoStub) ListHackathons(ctx context.Context, from *models.Date) ([]models.Hackathon, error) {
	if s.hackathonsFn == nil {
		return nil, nil
	}
	return s.hackathonsFn(ctx, from)
}
func (s *listingRepoStub) RecentFeed(ctx context.Context, perType int) ([]models.FeedEvent, error) {
	if s.feedFn == nil {
		return nil, nil
	}
	return s.feedFn(ctx, perType)
}

// notifRepoStub records what was stored.
type notifRepoStub struct {
	mu          sync.Mutex
	created     []models.Notification
	createErr   error
	batchErr    error
	markReadFn  func(context.Context, uint, []uint) (int64, error)
	unreadCount int64
}

func (s *notifRepoStub) Create(_ context.Context, n *models.Notification) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = uint(len(s.created) + 1)
	s.created = append(s.created, *n)
	return nil
}
func (s *notifRepoStub) CreateBatch(_ context.Context, ns []models.Notification) error {
	if s.batchErr != nil {
		return s.batchErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, ns...)
	return nil
}
func (s *notifRepoStub) ListForUser(_ context.Context, userID uint, _ bool, _ int) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.created {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}
func (s *notifRepoStub) UnreadCount(context.Context, uint) (int64, error) {
	return s.unreadCount, nil
}
func (s *notifRepoStub) MarkRead(ctx context.Context, userID uint, ids []uint) (int64, error) {
	if s.markReadFn == nil {
		return int64(len(ids)), nil
	}
	return s.markReadFn(ctx, userID, ids)
}

type sparkRepoStub struct {
	createQuestionFn func(context.Context, *models.DailySparkQuestion) error
	latestFn         func(context.Context) (*models.DailySparkQuestion, error)
	createAnswerFn   func(context.Context, *models.DailySparkAnswer) error
	voteFn           func(context.Context, uint, int) (int, error)
	topFn            func(context.Context, int) ([]models.DailySparkRanking, error)
}

func (s *sparkRepoStub) CreateQuestion(ctx context.Context, q *models.DailySparkQuestion) error {
	if s.createQuestionFn == nil {
		return nil
	}
	return s.createQuestionFn(ctx, q)
}
func (s *sparkRepoStub) Latest(ctx context.Context) (*models.DailySparkQuestion, error) {
	if s.latestFn == nil {
		return nil, models.NewNotFoundError("Daily Spark question", "latest")
	}
	return s.latestFn(ctx)
}
func (s *sparkRepoStub) CreateAnswer(ctx context.Context, a *models.DailySparkAnswer) error {
	if s.createAnswerFn == nil {
		return nil
	}
	return s.createAnswerFn(ctx, a)
}
func (s *sparkRepoStub) ListAnswers(context.Context, uint) ([]models.DailySparkAnswer, error) {
	return nil, nil
}
func (s *sparkRepoStub) Vote(ctx context.Context, id uint, delta int) (int, error) {
	return s.voteFn(ctx, id, delta)
}
func (s *sparkRepoStub) TopQuestions(ctx context.Context, limit int) ([]models.DailySparkRanking, error) {
	if s.topFn == nil {
		return nil, nil
	}
	return s.topFn(ctx, limit)
}

type searchRepoStub struct {
	searchFn     func(context.Context, string, int) ([]models.SearchResult, error)
	addHistoryFn func(context.Context, uint, string) error
}

func (s *searchRepoStub) Search(ctx context.Context, term string, perType int) ([]models.SearchResult, error) {
	return s.searchFn(ctx, term, perType)
}
func (s *searchRepoStub) AddHistory(ctx context.Context, userID uint, term string) error {
	if s.addHistoryFn == nil {
		return nil
	}
	return s.addHistoryFn(ctx, userID, term)
}
func (s *searchRepoStub) History(context.Context, uint, int) ([]models.SearchHistory, error) {
	return nil, nil
}

type issueRepoStub struct {
	created        []*models.UserIssue
	listFn         func(context.Context, models.IssueStatus) ([]models.UserIssue, error)
	updateStatusFn func(context.Context, uint, models.IssueStatus, time.Time) (*models.UserIssue, error)
}

func (s *issueRepoStub) Create(_ context.Context, issue *models.UserIssue) error {
	issue.ID = uint(len(s.created) + 1)
	s.created = append(s.created, issue)
	return nil
}
func (s *issueRepoStub) List(ctx context.Context, status models.IssueStatus) ([]models.UserIssue, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, status)
}
func (s *issueRepoStub) UpdateStatus(ctx context.Context, id uint, status models.IssueStatus, now time.Time) (*models.UserIssue, error) {
	return s.updateStatusFn(ctx, id, status, now)
}

type chatRepoStub struct {
	threads  map[models.UserPair]*models.ChatThread
	messages []models.ChatMessage
}

func newChatRepoStub() *chatRepoStub {
	return &chatRepoStub{threads: map[models.UserPair]*models.ChatThread{}}
}

func (s *chatRepoStub) EnsureThread(_ context.Context, pair models.UserPair) (*models.ChatThread, error) {
	if t, ok := s.threads[pair]; ok {
		return t, nil
	}
	t := &models.ChatThread{ID: uint(len(s.threads) + 1), UserLowID: pair.Low, UserHighID: pair.High}
	s.threads[pair] = t
	return t, nil
}
func (s *chatRepoStub) FindThread(_ context.Context, pair models.UserPair) (*models.ChatThread, error) {
	return s.threads[pair], nil
}
func (s *chatRepoStub) AddMessage(_ context.Context, msg *models.ChatMessage) error {
	msg.ID = uint(len(s.messages) + 1)
	s.messages = append(s.messages, *msg)
	return nil
}
func (s *chatRepoStub) ListMessages(_ context.Context, threadID uint, _, _ int) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].ThreadID == threadID {
			out = append(out, s.messages[i])
		}
	}
	return out, nil
}
func (s *chatRepoStub) Contacts(context.Context, uint) ([]models.ChatContact, error) {
	return nil, nil
}

type publishedEvent struct {
	UserID  uint
	Type    string
	Payload interface{}
}

// recordingPublisher captures realtime events; UserID 0 marks a broadcast.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) PublishUser(_ context.Context, userID uint, eventType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{UserID: userID, Type: eventType, Payload: payload})
}

func (p *recordingPublisher) PublishBroadcast(_ context.Context, eventType string, payload interface{}) {
	p.PublishUser(context.Background(), 0, eventType, payload)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

type questionRepoStub struct {
	questions map[uint]*models.Question
	answers   []models.ExpertAnswer
	likeFn    func(context.Context, uint, uint) (int, error)
}

func (s *questionRepoStub) Create(_ context.Context, q *models.Question) error {
	if s.questions == nil {
		s.questions = map[uint]*models.Question{}
	}
	q.ID = uint(len(s.questions) + 1)
	s.questions[q.ID] = q
	return nil
}
func (s *questionRepoStub) GetByID(_ context.Context, id uint) (*models.Question, error) {
	q, ok := s.questions[id]
	if !ok {
		return nil, models.NewNotFoundError("Question", id)
	}
	return q, nil
}
func (s *questionRepoStub) Popular(_ context.Context, limit int) ([]models.Question, error) {
	out := []models.Question{}
	for _, q := range s.questions {
		if len(out) == limit {
			break
		}
		out = append(out, *q)
	}
	return out, nil
}
func (s *questionRepoStub) ListByUser(_ context.Context, userID uint) ([]models.Question, error) {
	out := []models.Question{}
	for _, q := range s.questions {
		if q.UserID == userID {
			out = append(out, *q)
		}
	}
	return out, nil
}
func (s *questionRepoStub) Like(ctx context.Context, userID, questionID uint) (int, error) {
	if s.likeFn == nil {
		return 1, nil
	}
	return s.likeFn(ctx, userID, questionID)
}
func (s *questionRepoStub) CreateAnswer(_ context.Context, a *models.ExpertAnswer) error {
	a.ID = uint(len(s.answers) + 1)
	s.answers = append(s.answers, *a)
	return nil
}
