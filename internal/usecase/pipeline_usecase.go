package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/fadilmartias/cv-screener/internal/apperror"
	"github.com/fadilmartias/cv-screener/internal/model"
	"github.com/fadilmartias/cv-screener/internal/service"
	"go.uber.org/zap"
)

type PipelineState int

const (
	StateIdle PipelineState = iota
	StateDocumentSelected
	StateExtracting
	StateSkillsReady
	StateAnalyzing
	StateAnalysisReady
)

func (s PipelineState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDocumentSelected:
		return "document-selected"
	case StateExtracting:
		return "extracting"
	case StateSkillsReady:
		return "skills-ready"
	case StateAnalyzing:
		return "analyzing"
	case StateAnalysisReady:
		return "analysis-ready"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// PipelineSnapshot is a read-only copy of the pipeline for display.
type PipelineSnapshot struct {
	State        PipelineState
	DocumentName string
	Skills       model.SkillSet
	Position     string
	Outcome      *model.AnalysisOutcome
}

// UploadPipeline drives upload → extract → analyze for one upload session.
//
// Remote calls run without the lock held. Every document selection bumps a
// generation counter; a result that comes back for an older generation is
// dropped with ErrSuperseded, so the last selection always wins.
type UploadPipeline struct {
	extractor service.SkillExtractor
	analyzer  service.FitAnalyzer
	observer  Observer
	log       *zap.Logger

	mu         sync.Mutex
	state      PipelineState
	document   *model.Document
	skills     model.SkillSet
	position   string
	outcome    *model.AnalysisOutcome
	generation uint64
}

func NewUploadPipeline(extractor service.SkillExtractor, analyzer service.FitAnalyzer, log *zap.Logger, observer Observer) *UploadPipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &UploadPipeline{
		extractor: extractor,
		analyzer:  analyzer,
		observer:  observer,
		log:       log.Named("pipeline"),
	}
}

// SelectDocument accepts a PDF, discards skills and analysis from any earlier
// document and immediately runs extraction.
func (p *UploadPipeline) SelectDocument(ctx context.Context, doc model.Document) error {
	if !doc.IsPDF() {
		p.log.Info("rejected document", zap.String("name", doc.Name), zap.String("media_type", doc.MediaType))
		notify(p.observer, EventDocumentRejected, LevelError, "", "Only PDF files are allowed.")
		return apperror.NewValidationError(apperror.ReasonUnsupportedMediaType, "only PDF files are allowed")
	}

	accepted := model.Document{
		Name:      doc.Name,
		MediaType: doc.MediaType,
		Content:   append([]byte(nil), doc.Content...),
	}

	p.mu.Lock()
	p.generation++
	p.document = &accepted
	p.skills = nil
	p.outcome = nil
	p.state = StateDocumentSelected
	p.mu.Unlock()

	p.log.Info("document selected", zap.String("name", accepted.Name), zap.Int("bytes", len(accepted.Content)))
	notify(p.observer, EventDocumentSelected, LevelSuccess, "", "PDF uploaded!")

	return p.ExtractSkills(ctx)
}

// ExtractSkills submits the selected document for extraction. On failure the
// pipeline returns to StateDocumentSelected so the call can be retried.
func (p *UploadPipeline) ExtractSkills(ctx context.Context) error {
	p.mu.Lock()
	switch p.state {
	case StateDocumentSelected:
	case StateExtracting:
		p.mu.Unlock()
		return apperror.ErrOperationInProgress
	default:
		state := p.state
		p.mu.Unlock()
		return apperror.NewValidationError(apperror.ReasonInvalidState,
			fmt.Sprintf("cannot extract skills in state %s", state))
	}
	p.state = StateExtracting
	gen := p.generation
	doc := *p.document
	p.mu.Unlock()

	skills, err := p.extractor.ExtractSkills(ctx, doc)

	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		p.log.Info("discarding stale extraction", zap.String("name", doc.Name))
		return apperror.ErrSuperseded
	}
	if err != nil {
		p.state = StateDocumentSelected
		p.skills = nil
		p.mu.Unlock()

		extractErr := &apperror.ExtractionError{Err: err}
		p.log.Warn("skill extraction failed", zap.String("name", doc.Name), zap.Error(err))
		notify(p.observer, EventExtractionFailed, LevelError, "", apperror.UserMessage(err))
		return extractErr
	}
	if skills == nil {
		skills = model.SkillSet{}
	}
	p.skills = skills.Clone()
	p.state = StateSkillsReady
	p.mu.Unlock()

	p.log.Info("skills extracted", zap.String("name", doc.Name), zap.Int("count", len(skills)))
	notify(p.observer, EventSkillsExtracted, LevelSuccess, "", fmt.Sprintf("Extracted %d skill(s)", len(skills)))
	return nil
}

// SetTargetPosition stores the position text as typed. It never fails and
// does not move the state machine.
func (p *UploadPipeline) SetTargetPosition(text string) {
	p.mu.Lock()
	p.position = text
	p.mu.Unlock()
}

// Analyze scores the extracted skills against the target position.
func (p *UploadPipeline) Analyze(ctx context.Context) (*model.AnalysisOutcome, error) {
	p.mu.Lock()
	if p.state == StateAnalyzing {
		p.mu.Unlock()
		return nil, apperror.ErrOperationInProgress
	}
	if len(p.skills) == 0 {
		p.mu.Unlock()
		notify(p.observer, EventAnalysisRejected, LevelWarn, "", "Extract skills before analyzing.")
		return nil, apperror.NewValidationError(apperror.ReasonMissingSkills, "extract skills before analyzing")
	}
	position := strings.TrimSpace(p.position)
	if position == "" {
		p.mu.Unlock()
		notify(p.observer, EventAnalysisRejected, LevelWarn, "", "Please enter a job position.")
		return nil, apperror.NewValidationError(apperror.ReasonMissingPosition, "enter a job position")
	}

	p.state = StateAnalyzing
	p.outcome = nil
	gen := p.generation
	req := model.AnalysisRequest{
		DocumentName: p.document.Name,
		Position:     position,
		Skills:       p.skills.Clone(),
	}
	p.mu.Unlock()

	outcome, err := p.analyzer.Analyze(ctx, req)

	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		p.log.Info("discarding stale analysis", zap.String("name", req.DocumentName))
		return nil, apperror.ErrSuperseded
	}
	if err != nil {
		p.state = StateSkillsReady
		p.mu.Unlock()

		p.log.Warn("analysis failed", zap.String("name", req.DocumentName), zap.String("position", position), zap.Error(err))
		notify(p.observer, EventAnalysisFailed, LevelError, "", apperror.UserMessage(err))
		return nil, &apperror.AnalysisError{Err: err}
	}
	stored := *outcome
	p.outcome = &stored
	p.state = StateAnalysisReady
	p.mu.Unlock()

	p.log.Info("analysis complete",
		zap.String("name", req.DocumentName),
		zap.String("position", position),
		zap.Float64("match", stored.MatchPercentage),
		zap.String("recommendation", string(stored.Recommendation)))
	notify(p.observer, EventAnalysisComplete, LevelSuccess, "", "Analysis complete!")

	result := stored
	return &result, nil
}

func (p *UploadPipeline) State() PipelineState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *UploadPipeline) Snapshot() PipelineSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	snap := PipelineSnapshot{
		State:    p.state,
		Skills:   p.skills.Clone(),
		Position: p.position,
	}
	if p.document != nil {
		snap.DocumentName = p.document.Name
	}
	if p.outcome != nil {
		outcome := *p.outcome
		snap.Outcome = &outcome
	}
	return snap
}
