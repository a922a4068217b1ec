package viewer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/vineinventory-viewer/internal/pagecache"
	"github.com/angelmondragon/vineinventory-viewer/pkg/bot"
	pkgerrors "github.com/angelmondragon/vineinventory-viewer/pkg/errors"
	"github.com/angelmondragon/vineinventory-viewer/pkg/logger"
	"github.com/angelmondragon/vineinventory-viewer/pkg/types"
	"github.com/google/uuid"
)

const (
	statusCompleted      = "completed"
	defaultNotifyTimeout = 10 * time.Second
	viewIDQueryParam     = "view_id"
)

// SnapshotSource supplies the inventory embedded into generated pages.
type SnapshotSource interface {
	Snapshot(ctx context.Context, telegramID int64, businessName string) (*types.Snapshot, error)
}

// Notifier tells the bot that a viewer link is ready.
type Notifier interface {
	NotifyLinkReady(ctx context.Context, payload bot.LinkReady) error
}

// Service generates and serves cached viewer pages.
type Service interface {
	Generate(ctx context.Context, input GenerateInput) (*GenerateResult, error)
	Page(ctx context.Context, viewID string) (string, error)
	Index(ctx context.Context) (string, error)
	// Wait blocks until in-flight bot callbacks finish.
	Wait()
}

// GenerateInput is the body of POST /api/generate.
type GenerateInput struct {
	TelegramID    int64  `json:"telegram_id" validate:"required,gt=0"`
	BusinessName  string `json:"business_name" validate:"required"`
	CorrelationID string `json:"correlation_id"`
}

// GenerateResult is returned once the page is cached.
type GenerateResult struct {
	Status     string `json:"status"`
	ViewID     string `json:"view_id"`
	ViewerURL  string `json:"viewer_url"`
	TelegramID int64  `json:"telegram_id"`
}

// ServiceParams configure the viewer service.
type ServiceParams struct {
	Source        SnapshotSource
	Cache         pagecache.Cache
	Renderer      *Renderer
	Notifier      Notifier
	Logger        *logger.Logger
	ViewerURL     string
	APIBase       string
	NotifyTimeout time.Duration
	NewID         func() string
}

type service struct {
	source        SnapshotSource
	cache         pagecache.Cache
	renderer      *Renderer
	notifier      Notifier
	logg          *logger.Logger
	viewerURL     string
	apiBase       string
	notifyTimeout time.Duration
	newID         func() string
	pending       sync.WaitGroup
}

// NewService wires the viewer service. Notifier may be nil, in which case
// the bot is not called back.
func NewService(params ServiceParams) (Service, error) {
	if params.Source == nil {
		return nil, fmt.Errorf("snapshot source required")
	}
	if params.Cache == nil {
		return nil, fmt.Errorf("page cache required")
	}
	if params.Renderer == nil {
		return nil, fmt.Errorf("renderer required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	timeout := params.NotifyTimeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	newID := params.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &service{
		source:        params.Source,
		cache:         params.Cache,
		renderer:      params.Renderer,
		notifier:      params.Notifier,
		logg:          params.Logger,
		viewerURL:     strings.TrimRight(params.ViewerURL, "/"),
		apiBase:       params.APIBase,
		notifyTimeout: timeout,
		newID:         newID,
	}, nil
}

func (s *service) Generate(ctx context.Context, input GenerateInput) (*GenerateResult, error) {
	businessName := strings.TrimSpace(input.BusinessName)
	if input.TelegramID <= 0 || businessName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "telegram_id and business_name are required")
	}
	ctx = s.logg.WithTelegramID(ctx, input.TelegramID)
	ctx = s.logg.WithCorrelationID(ctx, input.CorrelationID)

	snapshot, err := s.source.Snapshot(ctx, input.TelegramID, businessName)
	if err != nil {
		return nil, err
	}

	html, err := s.renderer.RenderSnapshotPage(snapshot)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render viewer page")
	}

	viewID := s.newID()
	ctx = s.logg.WithViewID(ctx, viewID)
	if err := s.cache.Set(ctx, viewID, html); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cache viewer page")
	}

	result := &GenerateResult{
		Status:     statusCompleted,
		ViewID:     viewID,
		ViewerURL:  s.viewerLink(viewID),
		TelegramID: input.TelegramID,
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"rows":       snapshot.Meta.TotalRows,
		"html_bytes": len(html),
	}), "viewer.page_generated")

	s.notifyAsync(ctx, input, result.ViewerURL)
	return result, nil
}

func (s *service) Page(ctx context.Context, viewID string) (string, error) {
	viewID = strings.TrimSpace(viewID)
	if viewID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "view_id is required")
	}
	html, err := s.cache.Get(ctx, viewID)
	if errors.Is(err, pagecache.ErrNotFound) {
		s.logg.Warn(s.logg.WithViewID(ctx, viewID), "viewer.page_missing")
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "view not found or expired")
	}
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read cached page")
	}
	return html, nil
}

func (s *service) Index(ctx context.Context) (string, error) {
	html, err := s.renderer.RenderIndex(PageConfig{APIBase: s.apiBase})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render index page")
	}
	return html, nil
}

func (s *service) Wait() {
	s.pending.Wait()
}

func (s *service) viewerLink(viewID string) string {
	return fmt.Sprintf("%s/?%s=%s", s.viewerURL, viewIDQueryParam, viewID)
}

// notifyAsync outlives the request; failures are only logged.
func (s *service) notifyAsync(ctx context.Context, input GenerateInput, viewerURL string) {
	if s.notifier == nil {
		s.logg.Debug(ctx, "viewer.notify_skipped")
		return
	}
	payload := bot.LinkReady{TelegramID: input.TelegramID, ViewerURL: viewerURL}
	if input.CorrelationID != "" {
		correlationID := input.CorrelationID
		payload.CorrelationID = &correlationID
	}

	detached := context.WithoutCancel(ctx)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		notifyCtx, cancel := context.WithTimeout(detached, s.notifyTimeout)
		defer cancel()
		if err := s.notifier.NotifyLinkReady(notifyCtx, payload); err != nil {
			s.logg.Error(detached, "viewer.notify_failed", err)
			return
		}
		s.logg.Info(detached, "viewer.notify_sent")
	}()
}
