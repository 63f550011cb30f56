// Package pipeline provides the high-level orchestration for the gap analysis
// and CV synthesis process.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dddTech2/CV-CREATOR/internal/analysis"
	"github.com/dddTech2/CV-CREATOR/internal/assemble"
	"github.com/dddTech2/CV-CREATOR/internal/budget"
	"github.com/dddTech2/CV-CREATOR/internal/classify"
	"github.com/dddTech2/CV-CREATOR/internal/db"
	"github.com/dddTech2/CV-CREATOR/internal/fetch"
	"github.com/dddTech2/CV-CREATOR/internal/interview"
	"github.com/dddTech2/CV-CREATOR/internal/llm"
	"github.com/dddTech2/CV-CREATOR/internal/memory"
	"github.com/dddTech2/CV-CREATOR/internal/observability"
	"github.com/dddTech2/CV-CREATOR/internal/parsing"
	"github.com/dddTech2/CV-CREATOR/internal/schemas"
	"github.com/dddTech2/CV-CREATOR/internal/synthesis"
	"github.com/dddTech2/CV-CREATOR/internal/types"
)

// Snapshot stage names used for session persistence
const (
	stageRequirements = "requirements"
	stageProfile      = "profile"
	stageGapAnalysis  = "gap_analysis"
	stageInterview    = "interview"
	stageAnswers      = "classified_answers"
)

// Response is one user reply to an interview question
type Response struct {
	QuestionID string
	Answer     string
	Skip       bool
}

// AnswerFunc collects the user's responses for one interview round. A nil
// AnswerFunc skips every question, which still drives the state machine to a
// valid finish.
type AnswerFunc func(ctx context.Context, round int, questions []interview.Question) ([]Response, error)

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	CVPath      string
	JobPath     string
	JobURL      string
	UserID      string
	Language    string
	APIKey      string
	Verbose     bool
	DatabaseURL string

	Answers AnswerFunc

	// Overrides for tests; when nil they are built from the fields above
	Client  llm.Client
	Store   memory.Store
	Tracker budget.Tracker
}

// Result holds the pipeline outputs
type Result struct {
	Requirements *types.JobRequirements
	Profile      *types.CandidateProfile
	Analysis     *types.GapAnalysisResult
	Session      *interview.Session
	Document     *types.Document
	DocumentID   uuid.UUID
}

// Run orchestrates the full pipeline: extraction, gap analysis, the bounded
// interview, answer classification, synthesis, and document assembly.
func Run(ctx context.Context, opts RunOptions) (*Result, error) {
	printer := observability.NewPrinter(os.Stdout)

	if opts.UserID == "" {
		opts.UserID = "local"
	}
	if opts.Language == "" {
		opts.Language = "en"
	}

	client, err := buildClient(ctx, &opts)
	if err != nil {
		return nil, err
	}
	if client != nil {
		defer func() { _ = client.Close() }()
	}

	// Database is optional; without it memory and metering stay in-process
	database, store, tracker := buildPersistence(ctx, &opts)
	if database != nil {
		defer database.Close()
	}

	metered := func(op budget.Operation) llm.Client {
		return budget.Metered(client, tracker, tracker, opts.UserID, op)
	}

	fmt.Printf("Step 1/8: Loading CV and job posting...\n")
	cvText, jobText, jobURL, err := loadInputs(ctx, opts)
	if err != nil {
		return nil, err
	}

	fmt.Printf("Step 2/8: Extracting job requirements and candidate profile...\n")
	reqs, profile, err := extractBoth(ctx, metered, cvText, jobText)
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		printer.PrintRequirements(reqs)
	}

	fmt.Printf("Step 3/8: Analyzing gaps...\n")
	result, err := analysis.Analyze(profile, reqs)
	if err != nil {
		return nil, fmt.Errorf("gap analysis failed: %w", err)
	}
	if opts.Verbose {
		printer.PrintGapAnalysis(result)
	}

	var sessionID uuid.UUID
	if database != nil {
		sessionID, err = database.CreateSession(ctx, opts.UserID, reqs.Company, reqs.RoleTitle, jobURL)
		if err != nil {
			fmt.Printf("Warning: failed to create session record: %v\n", err)
		} else {
			_ = database.SaveSnapshot(ctx, sessionID, stageRequirements, reqs)
			_ = database.SaveSnapshot(ctx, sessionID, stageProfile, profile)
			_ = database.SaveSnapshot(ctx, sessionID, stageGapAnalysis, result)
		}
	}

	fmt.Printf("Step 4/8: Interviewing (up to %d rounds)...\n", interview.MaxRounds)
	session := interview.NewSession(opts.UserID, result, reqs, opts.Language)
	if err := runInterview(ctx, session, opts, metered(budget.OpQuestionGeneration), store, printer, database, sessionID); err != nil {
		return nil, err
	}
	if database != nil && sessionID != uuid.Nil {
		_ = database.SaveSnapshot(ctx, sessionID, stageInterview, session)
	}

	fmt.Printf("Step 5/8: Classifying answers...\n")
	answers, err := classifyAnswers(ctx, session, profile, metered(budget.OpClassification))
	if err != nil {
		return nil, err
	}
	if database != nil && sessionID != uuid.Nil {
		_ = database.SaveSnapshot(ctx, sessionID, stageAnswers, answers)
	}

	fmt.Printf("Step 6/8: Synthesizing experience and projects...\n")
	projects, err := synthesize(ctx, metered, profile, reqs, answers)
	if err != nil {
		return nil, err
	}

	fmt.Printf("Step 7/8: Prioritizing skills and writing summary...\n")
	skills := synthesis.PrioritizeSkills(ctx, metered(budget.OpSkillPrioritization), profile.Skills, reqs)
	profile.Summary = synthesis.GenerateSummary(ctx, metered(budget.OpSummaryGeneration), profile, reqs)

	fmt.Printf("Step 8/8: Assembling and validating document...\n")
	doc, err := assemble.Assemble(profile, projects, skills)
	if err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) && opts.Verbose {
			printer.PrintViolations(validationErr.Errors)
		}
		return nil, fmt.Errorf("document assembly failed: %w", err)
	}
	if opts.Verbose {
		printer.PrintDocument(doc)
	}

	out := &Result{
		Requirements: reqs,
		Profile:      profile,
		Analysis:     result,
		Session:      session,
		Document:     doc,
	}

	if database != nil && sessionID != uuid.Nil {
		docID, err := database.SaveDocument(ctx, sessionID, opts.UserID, doc)
		if err != nil {
			fmt.Printf("Warning: failed to save document: %v\n", err)
		} else {
			out.DocumentID = docID
		}
		_ = database.CompleteSession(ctx, sessionID, result.MatchScore)
	}

	fmt.Printf("Done. Match score: %.0f/100.\n", result.MatchScore)
	return out, nil
}

func buildClient(ctx context.Context, opts *RunOptions) (llm.Client, error) {
	if opts.Client != nil {
		return opts.Client, nil
	}
	if opts.APIKey == "" {
		return nil, fmt.Errorf("API key is required: set GEMINI_API_KEY or pass --api-key")
	}
	client, err := llm.NewClient(ctx, llm.DefaultConfig(), opts.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, nil
}

// buildPersistence wires the skill memory and budget tracker, preferring the
// database-backed implementations when a connection is available
func buildPersistence(ctx context.Context, opts *RunOptions) (*db.DB, memory.Store, budget.Tracker) {
	store := opts.Store
	tracker := opts.Tracker

	var database *db.DB
	if opts.DatabaseURL != "" {
		var err error
		database, err = db.Connect(ctx, opts.DatabaseURL)
		if err != nil {
			fmt.Printf("Warning: failed to connect to database: %v\n", err)
			fmt.Printf("Continuing without persistence...\n")
		} else if err := database.EnsureSchema(ctx); err != nil {
			fmt.Printf("Warning: failed to ensure schema: %v\n", err)
			database.Close()
			database = nil
		}
	}

	if database != nil {
		if store == nil {
			pgStore := memory.NewPGStore(database.Pool())
			if err := pgStore.EnsureSchema(ctx); err == nil {
				store = pgStore
			}
		}
		if tracker == nil {
			pgTracker := budget.NewPGTracker(database.Pool(), budget.DefaultPricing())
			if err := pgTracker.EnsureSchema(ctx); err == nil {
				tracker = pgTracker
			}
		}
	}
	if store == nil {
		store = memory.NewMemStore()
	}
	if tracker == nil {
		tracker = budget.NewMemTracker(budget.DefaultPricing())
	}
	return database, store, tracker
}

func loadInputs(ctx context.Context, opts RunOptions) (cvText, jobText, jobURL string, err error) {
	cvBytes, err := os.ReadFile(opts.CVPath)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to read CV file: %w", err)
	}
	cvText = string(cvBytes)

	if opts.JobURL != "" {
		posting, err := fetch.JobPosting(ctx, opts.JobURL, nil)
		if err != nil {
			return "", "", "", fmt.Errorf("failed to fetch job posting: %w", err)
		}
		return cvText, posting.Text, opts.JobURL, nil
	}

	jobBytes, err := os.ReadFile(opts.JobPath)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to read job posting file: %w", err)
	}
	return cvText, string(jobBytes), "", nil
}

// extractBoth runs requirement and profile extraction concurrently; the two
// calls are independent and each carries its own metered client
func extractBoth(ctx context.Context, metered func(budget.Operation) llm.Client, cvText, jobText string) (*types.JobRequirements, *types.CandidateProfile, error) {
	var reqs *types.JobRequirements
	var profile *types.CandidateProfile

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		reqs, err = parsing.ExtractJobRequirements(gCtx, metered(budget.OpJobExtraction), jobText)
		if err != nil {
			return fmt.Errorf("job requirement extraction failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		profile, err = parsing.ExtractCandidateProfile(gCtx, metered(budget.OpCVExtraction), cvText)
		if err != nil {
			return fmt.Errorf("candidate profile extraction failed: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return reqs, profile, nil
}

func runInterview(ctx context.Context, session *interview.Session, opts RunOptions, questionClient llm.Client, store memory.Store, printer *observability.Printer, database *db.DB, sessionID uuid.UUID) error {
	for {
		questions, err := session.StartRound(ctx, questionClient, store)
		if errors.Is(err, interview.ErrInterviewFinished) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to start interview round: %w", err)
		}
		if opts.Verbose {
			printer.PrintQuestions(session.Round, questions)
		}

		var responses []Response
		if opts.Answers != nil {
			responses, err = opts.Answers(ctx, session.Round, questions)
			if err != nil {
				return fmt.Errorf("interview round %d aborted: %w", session.Round, err)
			}
		}

		responded := make(map[string]bool, len(responses))
		for _, response := range responses {
			responded[response.QuestionID] = true
			if response.Skip || strings.TrimSpace(response.Answer) == "" {
				err = session.Skip(response.QuestionID)
			} else {
				err = session.Answer(response.QuestionID, response.Answer)
			}
			if err != nil {
				return fmt.Errorf("failed to record response: %w", err)
			}
		}
		// Unaddressed questions count as skipped so the round can close
		for _, question := range questions {
			if !responded[question.ID] {
				if err := session.Skip(question.ID); err != nil {
					return fmt.Errorf("failed to skip question: %w", err)
				}
			}
		}

		if err := session.CompleteRound(ctx, store); err != nil {
			return fmt.Errorf("failed to complete interview round: %w", err)
		}
		if database != nil && sessionID != uuid.Nil {
			_ = database.UpdateSessionState(ctx, sessionID, string(session.State), session.Round)
		}
	}
}

// classifyAnswers fans classification out over the answered questions. When
// the user's budget is exhausted mid-run the deterministic classifier takes
// over rather than losing the interview.
func classifyAnswers(ctx context.Context, session *interview.Session, profile *types.CandidateProfile, client llm.Client) ([]types.ClassifiedAnswer, error) {
	answered := session.AnsweredQuestions()
	if len(answered) == 0 {
		return nil, nil
	}

	inputs := make([]classify.Input, len(answered))
	for i, q := range answered {
		inputs[i] = classify.Input{Question: q.Text, Answer: q.Answer, Skill: q.Gap.Skill}
	}

	employers := make([]string, 0, len(profile.Experience))
	for _, entry := range profile.Experience {
		employers = append(employers, entry.Employer)
	}

	answers, err := classify.ClassifyAll(ctx, client, inputs, employers)
	if errors.Is(err, budget.ErrBudgetExceeded) {
		fmt.Printf("Warning: budget exhausted during classification; using deterministic classification.\n")
		answers, err = classify.ClassifyAll(ctx, nil, inputs, employers)
	}
	if err != nil {
		return nil, fmt.Errorf("answer classification failed: %w", err)
	}
	return answers, nil
}

func synthesize(ctx context.Context, metered func(budget.Operation) llm.Client, profile *types.CandidateProfile, reqs *types.JobRequirements, answers []types.ClassifiedAnswer) ([]types.ProjectEntry, error) {
	var work, projects []types.ClassifiedAnswer
	for _, answer := range answers {
		switch answer.Classification {
		case types.ClassWorkExperience:
			work = append(work, answer)
		case types.ClassProject:
			projects = append(projects, answer)
		}
	}

	client := metered(budget.OpExperienceSynthesis)
	if err := synthesis.EnrichExperience(ctx, client, profile, reqs, work); err != nil {
		if errors.Is(err, budget.ErrBudgetExceeded) {
			fmt.Printf("Warning: budget exhausted during synthesis; keeping answers verbatim.\n")
			err = synthesis.EnrichExperience(ctx, nil, profile, reqs, work)
		}
		if err != nil {
			return nil, fmt.Errorf("experience enrichment failed: %w", err)
		}
	}

	projectEntries, err := synthesis.BuildProjects(ctx, client, projects)
	if err != nil {
		if errors.Is(err, budget.ErrBudgetExceeded) {
			projectEntries, err = synthesis.BuildProjects(ctx, nil, projects)
		}
		if err != nil {
			return nil, fmt.Errorf("project synthesis failed: %w", err)
		}
	}

	synthesis.AddConfirmedSkills(profile, answers)
	return projectEntries, nil
}
