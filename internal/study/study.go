// Package study ties content analysis, generation, persistence and
// notifications together for the upload and smart-notes flows.
package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/studygenius/internal/analyzer"
	"github.com/pavelanni/studygenius/internal/events"
	"github.com/pavelanni/studygenius/internal/model"
	"github.com/pavelanni/studygenius/internal/stats"
	"github.com/pavelanni/studygenius/internal/store"
	"github.com/pavelanni/studygenius/internal/synth"
)

var (
	ErrNoFiles      = errors.New("no files uploaded")
	ErrEmptyContent = errors.New("content is empty")
	ErrBuiltinQuiz  = errors.New("built-in quizzes cannot be deleted")
)

// Summarizer produces the markdown summary of an upload.
type Summarizer interface {
	Summarize(ctx context.Context, fileNames []string, content string) (string, error)
}

// mockSummarizer renders the built-in summary template.
type mockSummarizer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (m *mockSummarizer) Summarize(_ context.Context, fileNames []string, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return synth.MockSummary(fileNames, m.rng), nil
}

// StatsPayload is published with every stats_changed event.
type StatsPayload struct {
	model.Stats
	Progress int `json:"progress"`
}

// NotesPayload is published with every notes_changed event.
type NotesPayload struct {
	Count int `json:"count"`
}

// Service runs the study flows for all users.
type Service struct {
	store      *store.Store
	pub        events.Publisher
	summarizer Summarizer
	gen        *synth.Generator
	ids        synth.IDSource

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option configures a Service.
type Option func(*Service)

// WithSummarizer replaces the template summary, for example with an LLM.
func WithSummarizer(s Summarizer) Option {
	return func(svc *Service) { svc.summarizer = s }
}

// WithRand seeds generation; tests use it for reproducible quizzes.
func WithRand(rng *rand.Rand) Option {
	return func(svc *Service) { svc.rng = rng }
}

// WithIDs sets the source of question and record IDs.
func WithIDs(ids synth.IDSource) Option {
	return func(svc *Service) { svc.ids = ids }
}

// New creates a service over st publishing to pub.
func New(st *store.Store, pub events.Publisher, opts ...Option) *Service {
	s := &Service{
		store: st,
		pub:   pub,
		ids:   synth.UUIDs(),
		rng:   rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}
	for _, o := range opts {
		o(s)
	}
	if s.pub == nil {
		s.pub = events.Discard
	}
	if s.summarizer == nil {
		s.summarizer = &mockSummarizer{rng: rand.New(rand.NewPCG(s.rng.Uint64(), s.rng.Uint64()))}
	}
	s.gen = synth.NewGenerator(s.ids)
	return s
}

// UploadResult is everything generated from one upload.
type UploadResult struct {
	Summary    string                `json:"summary"`
	Note       model.Note            `json:"note"`
	Quiz       model.Quiz            `json:"quiz"`
	Flashcards model.FlashcardSet    `json:"flashcards"`
	Test       model.DescriptiveTest `json:"test"`
	Stats      StatsPayload          `json:"stats"`
}

// FileText returns the text of a file, or a placeholder document for
// types that cannot be read as text.
func FileText(f model.UploadedFile) string {
	if strings.HasPrefix(f.MIMEType, "text/") {
		return string(f.Data)
	}
	return analyzer.PlaceholderContent(f.Name, f.MIMEType)
}

// ProcessUpload summarizes files and generates a smart note, a quiz, a
// flashcard set and a descriptive test from them.
func (s *Service) ProcessUpload(ctx context.Context, userID int64, files []model.UploadedFile) (*UploadResult, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	names := make([]string, len(files))
	texts := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
		texts[i] = FileText(f)
	}
	content := strings.Join(texts, "\n\n")
	fileName := files[0].Name
	title := analyzer.FileTitle(fileName)

	summary, err := s.summarize(ctx, names, content)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	res := &UploadResult{Summary: summary}

	res.Note = model.Note{
		ID: s.ids(), UserID: userID, Title: "Notes on " + title,
		Content: summary, HasAudio: true, CreatedAt: now,
	}

	s.rngMu.Lock()
	questions := synth.QuizFromContent(content, fileName, s.rng)
	s.rngMu.Unlock()
	res.Quiz = model.Quiz{
		ID: s.ids(), UserID: userID, Title: "Quiz from " + fileName,
		Difficulty: model.DifficultyHard, Questions: questions, CreatedAt: now,
	}

	res.Flashcards = model.FlashcardSet{
		ID: s.ids(), UserID: userID, Title: "Flashcards from " + fileName,
		Cards: synth.FlashcardsFromContent(content, fileName), CreatedAt: now,
	}

	topics := model.NewTopics(title)
	dq, err := s.gen.Generate(synth.ArchetypeBank(), topics, synth.UploadQuestionCount, synth.GenerateOptions{
		Themes:   analyzer.Themes(content, 5),
		Snippets: analyzer.Snippets(content, synth.UploadQuestionCount),
	})
	if err != nil {
		return nil, fmt.Errorf("generate descriptive test: %w", err)
	}
	res.Test = model.DescriptiveTest{
		ID: s.ids(), UserID: userID, Title: "Descriptive test: " + title,
		Source: model.SourceUpload, Topics: topics.All(), Questions: dq, CreatedAt: now,
	}

	if err := s.store.CreateNote(res.Note); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	if err := s.store.CreateQuiz(res.Quiz); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	if err := s.store.CreateFlashcardSet(res.Flashcards); err != nil {
		return nil, fmt.Errorf("create flashcard set: %w", err)
	}
	if err := s.store.CreateDescriptiveTest(res.Test); err != nil {
		return nil, fmt.Errorf("create descriptive test: %w", err)
	}

	count, err := s.store.CountNotes(userID)
	if err != nil {
		return nil, fmt.Errorf("count notes: %w", err)
	}
	res.Stats, err = s.updateStats(userID,
		stats.MaterialsUploaded(len(files)),
		stats.FlashcardSetAdded(),
		stats.NotesCounted(count),
	)
	if err != nil {
		return nil, err
	}
	s.pub.Publish(userID, events.NotesChanged, NotesPayload{Count: count})

	slog.Info("upload processed", "user_id", userID, "files", len(files),
		"quiz_questions", len(res.Quiz.Questions), "flashcards", len(res.Flashcards.Cards),
		"test_questions", len(res.Test.Questions))
	return res, nil
}

func (s *Service) summarize(ctx context.Context, names []string, content string) (string, error) {
	summary, err := s.summarizer.Summarize(ctx, names, content)
	if err == nil {
		return summary, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	slog.Warn("summarizer failed, using template summary", "error", err)
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return synth.MockSummary(names, s.rng), nil
}

// Analyze extracts topics from content and generates count questions from
// the cognitive bank without storing anything. A count below one uses the
// smart-notes default.
func (s *Service) Analyze(content, fileName string, count int) (model.Topics, []model.DescriptiveQuestion, error) {
	if strings.TrimSpace(content) == "" {
		return model.Topics{}, nil, ErrEmptyContent
	}
	topics := analyzer.ExtractTopics(content, fileName)
	if count < 1 {
		count = synth.NotesQuestionCount(topics)
	}
	qs, err := s.gen.Generate(synth.CognitiveBank(), topics, count, synth.GenerateOptions{})
	if err != nil {
		return model.Topics{}, nil, err
	}
	return topics, qs, nil
}

// Stats returns the user's stats with the overall progress.
func (s *Service) Stats(userID int64) (StatsPayload, error) {
	st, err := s.store.GetStats(userID)
	if err != nil {
		return StatsPayload{}, err
	}
	return StatsPayload{Stats: st, Progress: st.OverallProgress()}, nil
}

func (s *Service) updateStats(userID int64, evs ...stats.Event) (StatsPayload, error) {
	st, err := s.store.UpdateStats(userID, stats.Reducer(evs...))
	if err != nil {
		return StatsPayload{}, fmt.Errorf("update stats: %w", err)
	}
	p := StatsPayload{Stats: st, Progress: st.OverallProgress()}
	s.pub.Publish(userID, events.StatsChanged, p)
	slog.Debug("stats updated", "user_id", userID, "events", evs, "version", st.Version)
	return p, nil
}

// RecordExam stores the result of a finished exam session.
func (s *Service) RecordExam(r model.ExamResult) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if err := s.store.SaveExamResult(r); err != nil {
		return fmt.Errorf("save exam result: %w", err)
	}
	slog.Info("exam result saved", "user_id", r.UserID, "test_id", r.TestID, "score", r.Score, "percentage", r.Percentage)
	return nil
}
