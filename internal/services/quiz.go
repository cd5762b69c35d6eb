package services

import (
	"bytes"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quizprep-backend/internal/data/db"
	"github.com/yungbote/quizprep-backend/internal/data/repos"
	types "github.com/yungbote/quizprep-backend/internal/domain"
	"github.com/yungbote/quizprep-backend/internal/modules/practice"
	"github.com/yungbote/quizprep-backend/internal/pkg/dbctx"
	"github.com/yungbote/quizprep-backend/internal/platform/ctxutil"
	"github.com/yungbote/quizprep-backend/internal/platform/gcp"
	"github.com/yungbote/quizprep-backend/internal/platform/language"
	"github.com/yungbote/quizprep-backend/internal/platform/logger"
)

type PageUpload struct {
	Data     []byte
	MimeType string
	Filename string
}

type QuestionInput struct {
	Prompt          string `json:"prompt" validate:"required,max=2000"`
	ReferenceAnswer string `json:"reference_answer" validate:"max=4000"`
	Difficulty      string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

type CreateQuizInput struct {
	Title    string
	Type     string
	Language string
	Pages    []PageUpload
	// Questions are added verbatim after any generated ones.
	Questions []QuestionInput
}

type AppendQuestionsInput struct {
	Pages     []PageUpload
	Questions []QuestionInput
}

type PageScanView struct {
	*types.PageScan
	URL string `json:"url"`
}

type QuizDetail struct {
	Quiz      *types.Quiz       `json:"quiz"`
	Questions []*types.Question `json:"questions"`
	Pages     []PageScanView    `json:"pages"`
}

type QuizService interface {
	CreateQuiz(dbc dbctx.Context, ownerID uuid.UUID, in CreateQuizInput) (*QuizDetail, error)
	ListQuizzes(dbc dbctx.Context, ownerID uuid.UUID, quizType string) ([]*types.Quiz, error)
	GetQuiz(dbc dbctx.Context, ownerID, quizID uuid.UUID) (*QuizDetail, error)
	// AppendQuestions adds generated and manual questions after the quiz's
	// current last position.
	AppendQuestions(dbc dbctx.Context, ownerID, quizID uuid.UUID, in AppendQuestionsInput) ([]*types.Question, error)
}

type quizService struct {
	db           *gorm.DB
	log          *logger.Logger
	quizRepo     repos.QuizRepo
	questionRepo repos.QuestionRepo
	pageScanRepo repos.PageScanRepo
	generator    QuestionGenerator
	bucket       gcp.BucketService
}

// NewQuizService wires quiz management. generator and bucket may be nil;
// quizzes with page uploads then fail as unavailable.
func NewQuizService(
	db *gorm.DB,
	baseLog *logger.Logger,
	quizRepo repos.QuizRepo,
	questionRepo repos.QuestionRepo,
	pageScanRepo repos.PageScanRepo,
	generator QuestionGenerator,
	bucket gcp.BucketService,
) QuizService {
	return &quizService{
		db:           db,
		log:          baseLog.With("service", "QuizService"),
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		pageScanRepo: pageScanRepo,
		generator:    generator,
		bucket:       bucket,
	}
}

func normalizeQuizType(t string) string {
	t = strings.ToUpper(strings.TrimSpace(t))
	if t == "" {
		return types.QuizTypeQuestions
	}
	return t
}

func (s *quizService) CreateQuiz(dbc dbctx.Context, ownerID uuid.UUID, in CreateQuizInput) (*QuizDetail, error) {
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	quizType := normalizeQuizType(in.Type)
	if !types.ValidQuizType(quizType) {
		return nil, errInvalid("invalid_quiz_type", fmt.Sprintf("unknown quiz type %q", in.Type))
	}
	lang := ""
	if strings.TrimSpace(in.Language) != "" {
		code, ok := language.Normalize(in.Language)
		if !ok {
			return nil, errInvalid("unsupported_language", fmt.Sprintf("language %q is not supported", in.Language))
		}
		lang = code
	}
	if quizType == types.QuizTypeLanguage && lang == "" {
		return nil, errInvalid("language_required", "language quizzes need a language")
	}
	if len(in.Pages) == 0 && len(in.Questions) == 0 {
		return nil, errInvalid("empty_quiz", "upload at least one page or question")
	}
	if err := validateQuestionInputs(in.Questions); err != nil {
		return nil, err
	}
	if err := s.requirePageCollaborators(in.Pages); err != nil {
		return nil, err
	}

	quizID := uuid.New()
	batch, err := s.ingestPages(dbc, quizID, 0, in.Pages, lang)
	if err != nil {
		return nil, err
	}
	scans, generated, prefix := batch.scans, batch.generated, batch.prefix

	questions := PositionGeneratedQuestions(quizID, -1, scans, generated)
	questions = append(questions, positionManual(quizID, len(questions)-1, in.Questions)...)
	if len(questions) == 0 {
		s.cleanup(dbc, prefix)
		return nil, errConfiguration(fmt.Errorf("no questions could be generated from the uploaded pages"))
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = defaultQuizTitle
		if s.generator != nil {
			prompts := make([]string, 0, len(questions))
			for _, q := range questions {
				prompts = append(prompts, q.Prompt)
			}
			title = s.generator.Title(dbc.Ctx, prompts)
		}
	}

	quiz := &types.Quiz{ID: quizID, OwnerUserID: ownerID, Title: title, Type: quizType, Language: lang}
	err = db.Within(s.db, dbc, func(inner dbctx.Context) error {
		if _, err := s.quizRepo.Create(inner, []*types.Quiz{quiz}); err != nil {
			return err
		}
		if len(scans) > 0 {
			if _, err := s.pageScanRepo.Create(inner, scans); err != nil {
				return err
			}
		}
		_, err := s.questionRepo.Create(inner, questions)
		return err
	})
	if err != nil {
		s.cleanup(dbc, prefix)
		return nil, err
	}
	s.log.Info("Quiz created", "quiz_id", quizID, "owner_user_id", ownerID, "questions", len(questions), "pages", len(scans))
	return &QuizDetail{Quiz: quiz, Questions: practice.OrderQuestions(questions), Pages: s.pageViews(scans)}, nil
}

type pageBatch struct {
	prefix    string
	scans     []*types.PageScan
	generated []PageQuestions
}

// ingestPages stores page images under a fresh batch prefix and generates
// questions from them. Stored objects are removed again on failure.
func (s *quizService) ingestPages(dbc dbctx.Context, quizID uuid.UUID, firstPosition int, pages []PageUpload, lang string) (*pageBatch, error) {
	batch := &pageBatch{prefix: fmt.Sprintf("quizzes/%s/%s/", quizID, uuid.New())}
	if len(pages) == 0 {
		return batch, nil
	}
	images := make([]PageImage, 0, len(pages))
	for i, p := range pages {
		pos := firstPosition + i
		mimeType := strings.TrimSpace(p.MimeType)
		ext := strings.ToLower(path.Ext(p.Filename))
		if ext == "" {
			ext = ".jpg"
		}
		key := fmt.Sprintf("%spage-%03d%s", batch.prefix, pos, ext)
		if err := s.bucket.UploadFile(dbc, gcp.BucketCategoryPageScan, key, bytes.NewReader(p.Data), mimeType); err != nil {
			s.cleanup(dbc, batch.prefix)
			return nil, fmt.Errorf("store page %d: %w", pos, err)
		}
		batch.scans = append(batch.scans, &types.PageScan{
			ID:           uuid.New(),
			QuizID:       quizID,
			PagePosition: pos,
			StorageKey:   key,
			MimeType:     mimeType,
		})
		images = append(images, PageImage{PageNumber: pos, Data: p.Data, MimeType: mimeType})
	}

	generated, err := s.generator.Generate(dbc.Ctx, images, lang)
	if err != nil {
		s.cleanup(dbc, batch.prefix)
		return nil, fmt.Errorf("generate questions: %w", err)
	}
	byPosition := make(map[int]*types.PageScan, len(batch.scans))
	for _, sc := range batch.scans {
		byPosition[sc.PagePosition] = sc
	}
	for _, pq := range generated {
		if sc, ok := byPosition[pq.PageNumber]; ok {
			sc.OCRText = pq.OCRText
		}
	}
	batch.generated = generated
	return batch, nil
}

func (s *quizService) requirePageCollaborators(pages []PageUpload) error {
	if len(pages) == 0 {
		return nil
	}
	if s.bucket == nil {
		return errUnavailable("storage")
	}
	if s.generator == nil {
		return errUnavailable("question_generator")
	}
	return nil
}

func validateQuestionInputs(in []QuestionInput) error {
	for i, q := range in {
		if strings.TrimSpace(q.Prompt) == "" {
			return errInvalid("invalid_question", fmt.Sprintf("question %d has no prompt", i))
		}
	}
	return nil
}

func (s *quizService) cleanup(dbc dbctx.Context, prefix string) {
	if s.bucket == nil {
		return
	}
	if err := s.bucket.DeletePrefix(dbc.Ctx, gcp.BucketCategoryPageScan, prefix); err != nil {
		s.log.Warn("Page scan cleanup failed", "prefix", prefix, "error", err)
	}
}

// PositionGeneratedQuestions numbers generated questions after maxPosition,
// ordered by page and then by their order within the page.
func PositionGeneratedQuestions(quizID uuid.UUID, maxPosition int, scans []*types.PageScan, pages []PageQuestions) []*types.Question {
	ordered := make([]PageQuestions, len(pages))
	copy(ordered, pages)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].PageNumber < ordered[j].PageNumber })

	scanByPage := make(map[int]uuid.UUID, len(scans))
	for _, sc := range scans {
		scanByPage[sc.PagePosition] = sc.ID
	}

	var out []*types.Question
	pos := maxPosition
	for _, pq := range ordered {
		for _, g := range pq.Questions {
			pos++
			q := &types.Question{
				ID:              uuid.New(),
				QuizID:          quizID,
				Position:        pos,
				Prompt:          g.Question,
				ReferenceAnswer: g.Answer,
				Difficulty:      types.NormalizeDifficulty(g.Difficulty),
			}
			if id, ok := scanByPage[pq.PageNumber]; ok {
				scanID := id
				q.PageScanID = &scanID
			}
			out = append(out, q)
		}
	}
	return out
}

func positionManual(quizID uuid.UUID, maxPosition int, in []QuestionInput) []*types.Question {
	out := make([]*types.Question, 0, len(in))
	for i, q := range in {
		out = append(out, &types.Question{
			ID:              uuid.New(),
			QuizID:          quizID,
			Position:        maxPosition + 1 + i,
			Prompt:          strings.TrimSpace(q.Prompt),
			ReferenceAnswer: strings.TrimSpace(q.ReferenceAnswer),
			Difficulty:      types.NormalizeDifficulty(strings.ToLower(strings.TrimSpace(q.Difficulty))),
		})
	}
	return out
}

func (s *quizService) pageViews(scans []*types.PageScan) []PageScanView {
	out := make([]PageScanView, 0, len(scans))
	for _, sc := range scans {
		v := PageScanView{PageScan: sc}
		if s.bucket != nil {
			v.URL = s.bucket.GetPublicURL(gcp.BucketCategoryPageScan, sc.StorageKey)
		}
		out = append(out, v)
	}
	return out
}

func (s *quizService) ListQuizzes(dbc dbctx.Context, ownerID uuid.UUID, quizType string) ([]*types.Quiz, error) {
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	if quizType = strings.TrimSpace(quizType); quizType != "" {
		quizType = normalizeQuizType(quizType)
		if !types.ValidQuizType(quizType) {
			return nil, errInvalid("invalid_quiz_type", fmt.Sprintf("unknown quiz type %q", quizType))
		}
	}
	return s.quizRepo.ListByOwner(dbc, ownerID, quizType)
}

func (s *quizService) ownedQuiz(dbc dbctx.Context, ownerID, quizID uuid.UUID) (*types.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(dbc, quizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil || quiz.OwnerUserID != ownerID {
		return nil, errNotFound("quiz")
	}
	return quiz, nil
}

func (s *quizService) GetQuiz(dbc dbctx.Context, ownerID, quizID uuid.UUID) (*QuizDetail, error) {
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	var out *QuizDetail
	err := db.Within(s.db, dbc, func(inner dbctx.Context) error {
		quiz, err := s.ownedQuiz(inner, ownerID, quizID)
		if err != nil {
			return err
		}
		questions, err := s.questionRepo.ListByQuiz(inner, quizID)
		if err != nil {
			return err
		}
		scans, err := s.pageScanRepo.ListByQuiz(inner, quizID)
		if err != nil {
			return err
		}
		out = &QuizDetail{Quiz: quiz, Questions: questions, Pages: s.pageViews(scans)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *quizService) AppendQuestions(dbc dbctx.Context, ownerID, quizID uuid.UUID, in AppendQuestionsInput) ([]*types.Question, error) {
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	if len(in.Pages) == 0 && len(in.Questions) == 0 {
		return nil, errInvalid("empty_questions", "no pages or questions given")
	}
	if err := validateQuestionInputs(in.Questions); err != nil {
		return nil, err
	}
	if err := s.requirePageCollaborators(in.Pages); err != nil {
		return nil, err
	}

	quiz, err := s.ownedQuiz(dbc, ownerID, quizID)
	if err != nil {
		return nil, err
	}
	existingScans, err := s.pageScanRepo.ListByQuiz(dbc, quizID)
	if err != nil {
		return nil, err
	}
	firstPosition := 0
	for _, sc := range existingScans {
		if sc.PagePosition >= firstPosition {
			firstPosition = sc.PagePosition + 1
		}
	}
	batch, err := s.ingestPages(dbc, quizID, firstPosition, in.Pages, quiz.Language)
	if err != nil {
		return nil, err
	}

	var out []*types.Question
	err = db.Within(s.db, dbc, func(inner dbctx.Context) error {
		maxPos, err := s.questionRepo.MaxPosition(inner, quizID)
		if err != nil {
			return err
		}
		rows := PositionGeneratedQuestions(quizID, maxPos, batch.scans, batch.generated)
		rows = append(rows, positionManual(quizID, maxPos+len(rows), in.Questions)...)
		if len(rows) == 0 {
			return errConfiguration(fmt.Errorf("no questions could be generated from the uploaded pages"))
		}
		if len(batch.scans) > 0 {
			if _, err := s.pageScanRepo.Create(inner, batch.scans); err != nil {
				return err
			}
		}
		created, err := s.questionRepo.Create(inner, rows)
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		s.cleanup(dbc, batch.prefix)
		return nil, err
	}
	return out, nil
}
