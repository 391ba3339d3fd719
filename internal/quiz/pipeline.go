package quiz

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/snapquiz/backend/internal/generator"
	"github.com/snapquiz/backend/internal/models"
	"github.com/snapquiz/backend/internal/state"
)

// UsageRecorder receives the prompt after a successful generation. The call
// is fire-and-forget: failures are logged, never surfaced to the user.
type UsageRecorder interface {
	RecordPromptUsage(ctx context.Context, uid, prompt string) error
}

// Pipeline turns a free-text prompt into quiz items: compose instruction →
// generation call → extract JSON array → parse → replace the user's session
// wholesale. Progress is published on a per-user result cell.
//
// Concurrent Generate calls for the same user are not fenced: whichever
// call's result lands last wins the published state. Single-user,
// single-active-prompt usage makes that acceptable; a request-id guard is a
// known possible hardening (see DESIGN.md).
type Pipeline struct {
	client   generator.TextClient
	sessions SessionStore
	usage    UsageRecorder

	mu      sync.Mutex
	results map[string]*state.Cell[Result]
}

func NewPipeline(client generator.TextClient, sessions SessionStore, usage UsageRecorder) *Pipeline {
	return &Pipeline{
		client:   client,
		sessions: sessions,
		usage:    usage,
		results:  make(map[string]*state.Cell[Result]),
	}
}

// Results returns the observable result cell for uid, creating it on first
// use. The initial value is an empty Success: "no quiz yet".
func (p *Pipeline) Results(uid string) *state.Cell[Result] {
	p.mu.Lock()
	defer p.mu.Unlock()
	cell, ok := p.results[uid]
	if !ok {
		cell = state.NewCell(Success(nil))
		p.results[uid] = cell
	}
	return cell
}

// Generate runs the pipeline asynchronously for uid, publishing Loading and
// then exactly one of Success or Error on the user's result cell.
func (p *Pipeline) Generate(ctx context.Context, uid, prompt string, count int, difficulty models.Difficulty, language string) {
	cell := p.Results(uid)

	// Fail fast on a blank prompt, before any network call.
	if strings.TrimSpace(prompt) == "" {
		cell.Set(Failure("Prompt must not be empty or blank."))
		return
	}

	cell.Set(Loading())
	go p.run(ctx, cell, uid, prompt, count, difficulty, language)
}

func (p *Pipeline) run(ctx context.Context, cell *state.Cell[Result], uid, prompt string, count int, difficulty models.Difficulty, language string) {
	instruction := generator.BuildQuizPrompt(prompt, count, difficulty, language)

	text, err := p.client.Generate(ctx, instruction)
	if err != nil {
		cell.Set(Failure(errMessage(err)))
		return
	}

	items, err := generator.ParseQuizItems(generator.ExtractJSONArray(text))
	if err != nil {
		cell.Set(Failure(errMessage(err)))
		return
	}

	session, err := p.sessions.Get(ctx, uid)
	if err != nil {
		cell.Set(Failure(errMessage(err)))
		return
	}
	session.ReplaceAll(items)
	if err := p.sessions.Save(ctx, uid, session); err != nil {
		log.Printf("save quiz session for %s: %v", uid, err)
	}

	cell.Set(Success(items))

	if p.usage != nil {
		go func() {
			if err := p.usage.RecordPromptUsage(context.Background(), uid, prompt); err != nil {
				log.Printf("record prompt usage for %s: %v", uid, err)
			}
		}()
	}
}

func errMessage(err error) string {
	if err == nil || err.Error() == "" {
		return "Something went wrong"
	}
	return err.Error()
}
