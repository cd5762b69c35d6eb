package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quizprep-backend/internal/data/repos"
	"github.com/yungbote/quizprep-backend/internal/data/repos/testutil"
	types "github.com/yungbote/quizprep-backend/internal/domain"
	"github.com/yungbote/quizprep-backend/internal/pkg/dbctx"
	"github.com/yungbote/quizprep-backend/internal/platform/gcp"
	"github.com/yungbote/quizprep-backend/internal/platform/logger"
	"github.com/yungbote/quizprep-backend/internal/platform/oauth"
	"github.com/yungbote/quizprep-backend/internal/platform/redis"
)

type stack struct {
	db        *gorm.DB
	log       *logger.Logger
	users     repos.UserRepo
	idents    repos.UserIdentityRepo
	quizzes   repos.QuizRepo
	questions repos.QuestionRepo
	pages     repos.PageScanRepo
	sessions  repos.PrepSessionRepo
	answers   repos.AnswerRepo
}

// newStack returns repositories over a fresh database. Fixtures are written
// without a long-lived transaction so services can open their own.
func newStack(t *testing.T) *stack {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return &stack{
		db:        db,
		log:       log,
		users:     repos.NewUserRepo(db, log),
		idents:    repos.NewUserIdentityRepo(db, log),
		quizzes:   repos.NewQuizRepo(db, log),
		questions: repos.NewQuestionRepo(db, log),
		pages:     repos.NewPageScanRepo(db, log),
		sessions:  repos.NewPrepSessionRepo(db, log),
		answers:   repos.NewAnswerRepo(db, log),
	}
}

func (s *stack) practice() PracticeService {
	return NewPracticeService(s.db, s.log, s.sessions, s.quizzes, s.questions, s.answers)
}

func (s *stack) answerService(ev Evaluator, sp gcp.Speech, bucket gcp.BucketService) AnswerService {
	return NewAnswerService(s.db, s.log, s.sessions, s.quizzes, s.questions, s.answers, ev, sp, bucket)
}

func (s *stack) countAnswers(t *testing.T, sessionID uuid.UUID) int {
	t.Helper()
	rows, err := s.answers.ListBySession(dbctx.Context{Ctx: context.Background()}, sessionID)
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	return len(rows)
}

func bg() dbctx.Context { return dbctx.Context{Ctx: context.Background()} }

// fakeEvaluator answers every request with raw, or with err. Stream splits
// raw into chunks when chunks is empty.
type fakeEvaluator struct {
	raw    string
	err    error
	chunks []string
	calls  int
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, in EvalInput) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.raw, nil
}

func (f *fakeEvaluator) Stream(ctx context.Context, in EvalInput) iter.Seq2[string, error] {
	f.calls++
	return func(yield func(string, error) bool) {
		chunks := f.chunks
		if len(chunks) == 0 {
			chunks = []string{f.raw}
		}
		for _, c := range chunks {
			if !yield(c, nil) {
				return
			}
		}
		if f.err != nil {
			yield("", f.err)
		}
	}
}

type fakeSpeech struct {
	text string
	err  error
	lang string
	// cancel, when set, is called during transcription.
	cancel context.CancelFunc
}

func (f *fakeSpeech) Transcribe(ctx context.Context, audio []byte, mimeType, languageCode string) (*gcp.Transcript, error) {
	f.lang = languageCode
	if f.cancel != nil {
		f.cancel()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &gcp.Transcript{Text: f.text, Confidence: 0.9}, nil
}

func (f *fakeSpeech) Close() error { return nil }

type memBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newMemBucket() *memBucket { return &memBucket{objects: map[string][]byte{}} }

func (b *memBucket) k(cat gcp.BucketCategory, key string) string { return string(cat) + ":" + key }

func (b *memBucket) UploadFile(dbc dbctx.Context, cat gcp.BucketCategory, key string, r io.Reader, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[b.k(cat, key)] = data
	return nil
}

func (b *memBucket) DownloadFile(ctx context.Context, cat gcp.BucketCategory, key string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[b.k(cat, key)]
	if !ok {
		return nil, gcp.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *memBucket) GetObjectAttrs(ctx context.Context, cat gcp.BucketCategory, key string) (*gcp.ObjectAttrs, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[b.k(cat, key)]
	if !ok {
		return nil, gcp.ErrObjectNotFound
	}
	return &gcp.ObjectAttrs{Size: int64(len(data))}, nil
}

func (b *memBucket) DeleteFile(dbc dbctx.Context, cat gcp.BucketCategory, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, b.k(cat, key))
	return nil
}

func (b *memBucket) DeletePrefix(ctx context.Context, cat gcp.BucketCategory, prefix string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, prefix)
	for k := range b.objects {
		if strings.HasPrefix(k, b.k(cat, prefix)) {
			delete(b.objects, k)
		}
	}
	return nil
}

func (b *memBucket) GetPublicURL(cat gcp.BucketCategory, key string) string {
	return "https://cdn.test/" + string(cat) + "/" + key
}

func (b *memBucket) count(cat gcp.BucketCategory) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for k := range b.objects {
		if strings.HasPrefix(k, string(cat)+":") {
			n++
		}
	}
	return n
}

type fakeTTS struct {
	calls int
	ssml  string
	lang  string
}

func (f *fakeTTS) Synthesize(ctx context.Context, ssml, lang string) ([]byte, error) {
	f.calls++
	f.ssml, f.lang = ssml, lang
	return []byte("mp3:" + ssml), nil
}

func (f *fakeTTS) Close() error { return nil }

// fakeGenerator produces questions per page with gen, or fails with err.
type fakeGenerator struct {
	gen   func(page PageImage) []GeneratedQuestion
	err   error
	title string
}

func (f *fakeGenerator) Generate(ctx context.Context, pages []PageImage, language string) ([]PageQuestions, error) {
	if f.err != nil {
		return nil, f.err
	}
	// Reverse order so callers cannot rely on the generator's ordering.
	out := make([]PageQuestions, 0, len(pages))
	for i := len(pages) - 1; i >= 0; i-- {
		p := pages[i]
		out = append(out, PageQuestions{PageNumber: p.PageNumber, OCRText: fmt.Sprintf("ocr page %d", p.PageNumber), Questions: f.gen(p)})
	}
	return out, nil
}

func (f *fakeGenerator) Title(ctx context.Context, prompts []string) string {
	if f.title == "" {
		return defaultQuizTitle
	}
	return f.title
}

type fakeProvider struct {
	state, nonce string
	ident        oauth.Identity
	err          error
}

func (f *fakeProvider) LoginURL(state, nonce string) string {
	f.state, f.nonce = state, nonce
	return "https://accounts.test/auth?state=" + state
}

func (f *fakeProvider) Exchange(ctx context.Context, code string) (oauth.Identity, error) {
	if f.err != nil {
		return oauth.Identity{}, f.err
	}
	id := f.ident
	id.Nonce = f.nonce
	return id, nil
}

type memStates struct {
	mu sync.Mutex
	m  map[string]string
}

func (s *memStates) Save(ctx context.Context, state, nonce string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		s.m = map[string]string{}
	}
	if _, ok := s.m[state]; ok {
		return errors.New("state exists")
	}
	s.m[state] = nonce
	return nil
}

func (s *memStates) Consume(ctx context.Context, state string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.m[state]
	if !ok {
		return "", redis.ErrStateNotFound
	}
	delete(s.m, state)
	return n, nil
}

// seedQuiz writes a quiz owned by a fresh user with one question per prompt,
// positioned in order.
func seedQuiz(t *testing.T, s *stack, quizType string, prompts ...string) (*types.User, *types.Quiz, []*types.Question) {
	t.Helper()
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, s.db, "")
	qz := testutil.SeedQuiz(t, ctx, s.db, u.ID, quizType)
	var qs []*types.Question
	for i, p := range prompts {
		qs = append(qs, testutil.SeedQuestion(t, ctx, s.db, qz.ID, i, p))
	}
	return u, qz, qs
}
