// Package exam runs descriptive tests: one question at a time, with a
// countdown clock and cumulative scoring in exam mode, and retries with
// automatic hints in practice mode.
package exam

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/pavelanni/studygenius/internal/events"
	"github.com/pavelanni/studygenius/internal/grader"
	"github.com/pavelanni/studygenius/internal/model"
)

var (
	ErrNoQuestions  = errors.New("test has no questions")
	ErrAnswerLocked = errors.New("answer is locked")
	ErrNoMoreHints  = errors.New("no more hints")
	ErrFinished     = errors.New("exam is finished")
)

// TimerState is the state of the question clock.
type TimerState string

const (
	TimerIdle    TimerState = "idle"
	TimerRunning TimerState = "running"
	TimerExpired TimerState = "expired"
)

// Ticker drives the question clock.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker wraps time.NewTicker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{time.NewTicker(d)}
}

// Config controls the question clock.
type Config struct {
	TimeLimit    int // seconds per question
	HintPenalty  int // seconds removed per hint while the clock runs
	TickInterval time.Duration
	NewTicker    func(time.Duration) Ticker
	// IdleTimeout is how long a session may go without a user action
	// before the manager sweeps it.
	IdleTimeout time.Duration
}

// DefaultConfig is a 300 second clock ticking once per second with a 30 second hint penalty.
func DefaultConfig() Config {
	return Config{
		TimeLimit:    grader.TimeLimit,
		HintPenalty:  30,
		TickInterval: time.Second,
		NewTicker:    NewTimeTicker,
		IdleTimeout:  2 * time.Hour,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TimeLimit <= 0 {
		c.TimeLimit = d.TimeLimit
	}
	if c.HintPenalty < 0 {
		c.HintPenalty = 0
	}
	if c.TickInterval <= 0 {
		c.TickInterval = d.TickInterval
	}
	if c.NewTicker == nil {
		c.NewTicker = d.NewTicker
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = d.IdleTimeout
	}
	return c
}

// Answer is the graded outcome of one question.
type Answer struct {
	QuestionID    string              `json:"question_id"`
	Text          string              `json:"text"`
	Result        model.GradingResult `json:"result"`
	AutoSubmitted bool                `json:"auto_submitted"`
}

// Session is one run through a descriptive test. All methods are safe for
// concurrent use.
type Session struct {
	ID       string
	UserID   int64
	TestID   string
	ExamMode bool

	cfg       Config
	questions []model.DescriptiveQuestion
	pub       events.Publisher

	mu         sync.Mutex
	current    int
	draft      string
	hintsShown int
	locked     bool
	last       *model.GradingResult
	answers    []Answer
	score      int
	correct    int
	remaining  int
	state      TimerState
	finished   bool
	finishedAt time.Time
	activeAt   time.Time
	closed     bool
	stop       chan struct{}
	gen        uint64
	wg         sync.WaitGroup
}

// NewSession creates a session over questions. Nothing runs until Start.
func NewSession(id string, userID int64, testID string, questions []model.DescriptiveQuestion, examMode bool, cfg Config, pub events.Publisher) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	if pub == nil {
		pub = events.Discard
	}
	cfg = cfg.withDefaults()
	return &Session{
		ID:        id,
		UserID:    userID,
		TestID:    testID,
		ExamMode:  examMode,
		cfg:       cfg,
		questions: questions,
		pub:       pub,
		remaining: cfg.TimeLimit,
		state:     TimerIdle,
		activeAt:  time.Now(),
	}, nil
}

// Start displays the first question and, in exam mode, starts its clock.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.finished {
		return
	}
	s.showLocked(0)
}

// showLocked resets per-question state for question i.
func (s *Session) showLocked(i int) {
	s.current = i
	s.draft = ""
	s.hintsShown = 0
	s.locked = false
	s.last = nil
	s.remaining = s.cfg.TimeLimit
	s.stopTimerLocked()
	s.state = TimerIdle
	if s.ExamMode {
		s.state = TimerRunning
		s.startTimerLocked()
	}
}

// SetDraft stores the in-progress answer. Auto-submit grades the latest draft.
func (s *Session) SetDraft(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writableLocked(); err != nil {
		return err
	}
	s.activeAt = time.Now()
	s.draft = text
	return nil
}

func (s *Session) writableLocked() error {
	switch {
	case s.finished || s.closed:
		return ErrFinished
	case s.locked || s.state == TimerExpired:
		return ErrAnswerLocked
	}
	return nil
}

// Submit grades answer against the current question. In exam mode each
// question takes one submission and stops the clock. In practice mode wrong
// answers may be retried and reveal the next hint.
func (s *Session) Submit(answer string) (model.GradingResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writableLocked(); err != nil {
		return model.GradingResult{}, err
	}

	s.activeAt = time.Now()
	q := s.questions[s.current]
	res, err := grader.Grade(answer, q, grader.Options{ExamMode: s.ExamMode, TimeRemaining: s.remaining})
	if err != nil {
		return model.GradingResult{}, err
	}
	s.draft = answer
	s.recordLocked(q, answer, res, false)

	if s.ExamMode {
		s.locked = true
		s.stopTimerLocked()
		s.state = TimerIdle
	} else if res.IsCorrect {
		s.locked = true
	} else if s.hintsShown < len(q.Hints) {
		s.hintsShown++
	}
	return res, nil
}

func (s *Session) recordLocked(q model.DescriptiveQuestion, text string, res model.GradingResult, auto bool) {
	s.last = &res
	s.score += res.Score()
	if res.IsCorrect {
		s.correct++
	}
	s.answers = append(s.answers, Answer{QuestionID: q.ID, Text: text, Result: res, AutoSubmitted: auto})
}

// Hint reveals the next hint of the current question. While the clock runs
// it costs HintPenalty seconds, clamped at zero; the clock only expires on a tick.
func (s *Session) Hint() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished || s.closed {
		return "", ErrFinished
	}
	s.activeAt = time.Now()
	q := s.questions[s.current]
	if s.hintsShown >= len(q.Hints) {
		return "", ErrNoMoreHints
	}
	h := q.Hints[s.hintsShown]
	s.hintsShown++
	if s.state == TimerRunning {
		s.remaining = max(0, s.remaining-s.cfg.HintPenalty)
	}
	return h, nil
}

// Next advances to the following question and resets its clock. After the
// last question the session finishes and Next reports true.
func (s *Session) Next() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished || s.closed {
		return s.finished, ErrFinished
	}
	s.activeAt = time.Now()
	if s.current+1 < len(s.questions) {
		s.showLocked(s.current + 1)
		return false, nil
	}
	s.stopTimerLocked()
	s.state = TimerIdle
	s.finished = true
	s.finishedAt = s.activeAt
	s.pub.Publish(s.UserID, events.ExamCompleted, s.summaryLocked())
	return true, nil
}

// Finished reports whether the last question has been passed.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// Idle reports whether no user action happened within the idle timeout.
func (s *Session) Idle(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.activeAt) > s.cfg.IdleTimeout
}

// Close stops the clock and waits for the ticker goroutine to exit.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.stopTimerLocked()
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Session) startTimerLocked() {
	s.stop = make(chan struct{})
	s.gen++
	t := s.cfg.NewTicker(s.cfg.TickInterval)
	s.wg.Add(1)
	go s.run(t, s.stop, s.gen)
}

func (s *Session) stopTimerLocked() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	s.gen++
}

func (s *Session) run(t Ticker, stop <-chan struct{}, gen uint64) {
	defer s.wg.Done()
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C():
			if !s.tick(gen) {
				return
			}
		}
	}
}

type tickPayload struct {
	SessionID string `json:"session_id"`
	Question  int    `json:"question"`
	Remaining int    `json:"remaining"`
}

// tick advances the clock by one second and reports whether it keeps running.
func (s *Session) tick(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.state != TimerRunning {
		return false
	}
	s.remaining = max(0, s.remaining-1)
	payload := tickPayload{SessionID: s.ID, Question: s.current, Remaining: s.remaining}
	s.pub.Publish(s.UserID, events.ExamTick, payload)
	if s.remaining > 0 {
		return true
	}

	s.autoSubmitLocked()
	s.state = TimerExpired
	s.stopTimerLocked()
	s.pub.Publish(s.UserID, events.ExamExpired, payload)
	return false
}

// autoSubmitLocked grades whatever draft is present. An empty draft scores zero.
func (s *Session) autoSubmitLocked() {
	q := s.questions[s.current]
	res, err := grader.Grade(s.draft, q, grader.Options{ExamMode: true, TimeRemaining: 0})
	if err != nil {
		res = model.GradingResult{
			MatchedKeywords: []string{},
			MissingKeywords: q.Keywords,
			RequiredMatches: grader.RequiredMatches(len(q.Keywords)),
			Feedback:        model.FeedbackFailure,
			Exam:            grader.ExamScore(0, q.Difficulty, 0),
		}
	}
	s.locked = true
	s.recordLocked(q, s.draft, res, true)
	slog.Info("exam question auto-submitted", "session_id", s.ID, "question", s.current, "score", res.Score())
	s.pub.Publish(s.UserID, events.ExamAutoSubmitted, Answer{QuestionID: q.ID, Text: s.draft, Result: res, AutoSubmitted: true})
}

// QuestionView is the client view of a question. Keywords and the reference
// answer stay hidden until the question is locked.
type QuestionView struct {
	ID            string           `json:"id"`
	Question      string           `json:"question"`
	Difficulty    model.Difficulty `json:"difficulty"`
	Topic         string           `json:"topic"`
	Category      string           `json:"category"`
	HintCount     int              `json:"hint_count"`
	Hints         []string         `json:"hints"`
	Explanation   string           `json:"explanation,omitempty"`
	CorrectAnswer string           `json:"correct_answer,omitempty"`
	Keywords      []string         `json:"keywords,omitempty"`
}

// View is a point-in-time copy of the session.
type View struct {
	ID         string               `json:"id"`
	TestID     string               `json:"test_id"`
	ExamMode   bool                 `json:"exam_mode"`
	Index      int                  `json:"index"`
	Total      int                  `json:"total"`
	Question   QuestionView         `json:"question"`
	Draft      string               `json:"draft"`
	Locked     bool                 `json:"locked"`
	Timer      TimerState           `json:"timer"`
	Remaining  int                  `json:"remaining"`
	Score      int                  `json:"score"`
	Correct    int                  `json:"correct"`
	LastResult *model.GradingResult `json:"last_result,omitempty"`
	Finished   bool                 `json:"finished"`
	Summary    *grader.Summary      `json:"summary,omitempty"`
}

// Snapshot returns the current view.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.questions[s.current]
	qv := QuestionView{
		ID:         q.ID,
		Question:   q.Question,
		Difficulty: q.Difficulty,
		Topic:      q.Topic,
		Category:   q.Category,
		HintCount:  len(q.Hints),
		Hints:      append([]string(nil), q.Hints[:s.hintsShown]...),
	}
	if s.locked {
		qv.Explanation = q.Explanation
		qv.CorrectAnswer = q.CorrectAnswer
		qv.Keywords = q.Keywords
	}
	v := View{
		ID:         s.ID,
		TestID:     s.TestID,
		ExamMode:   s.ExamMode,
		Index:      s.current,
		Total:      len(s.questions),
		Question:   qv,
		Draft:      s.draft,
		Locked:     s.locked,
		Timer:      s.state,
		Remaining:  s.remaining,
		Score:      s.score,
		Correct:    s.correct,
		LastResult: s.last,
		Finished:   s.finished,
	}
	if s.finished {
		sum := s.summaryLocked()
		v.Summary = &sum
	}
	return v
}

func (s *Session) summaryLocked() grader.Summary {
	return grader.Summarize(s.score, len(s.questions))
}

// Result returns the stored form of a finished session.
func (s *Session) Result() (model.ExamResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finished {
		return model.ExamResult{}, errors.New("exam is not finished")
	}
	sum := s.summaryLocked()
	return model.ExamResult{
		ID:          s.ID,
		UserID:      s.UserID,
		TestID:      s.TestID,
		ExamMode:    s.ExamMode,
		Score:       s.score,
		Questions:   len(s.questions),
		Correct:     s.correct,
		Percentage:  sum.Percentage,
		Mastery:     string(sum.Mastery),
		CompletedAt: s.finishedAt,
	}, nil
}

// Answers returns the graded answers so far.
func (s *Session) Answers() []Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Answer(nil), s.answers...)
}
