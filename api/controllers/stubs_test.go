package controllers

import (
	"context"
	"errors"

	"github.com/angelmondragon/vineinventory-viewer/internal/inventory"
	"github.com/angelmondragon/vineinventory-viewer/internal/viewer"
	"github.com/angelmondragon/vineinventory-viewer/pkg/auth"
	"github.com/angelmondragon/vineinventory-viewer/pkg/types"
)

type stubInventoryService struct {
	snapshot  *types.Snapshot
	movements []types.Movement
	err       error

	lastUpdate   inventory.FieldUpdate
	lastWineName string
}

func (s *stubInventoryService) Snapshot(ctx context.Context, telegramID int64, businessName string) (*types.Snapshot, error) {
	return s.snapshot, s.err
}

func (s *stubInventoryService) UpdateField(ctx context.Context, input inventory.FieldUpdate) error {
	s.lastUpdate = input
	return s.err
}

func (s *stubInventoryService) Movements(ctx context.Context, telegramID int64, businessName, wineName string) ([]types.Movement, error) {
	s.lastWineName = wineName
	return s.movements, s.err
}

type stubTokens struct {
	identity auth.ViewerIdentity
}

func (s stubTokens) Validate(raw string) (auth.ViewerIdentity, error) {
	if raw != "good" {
		return auth.ViewerIdentity{}, errors.New("bad token")
	}
	return s.identity, nil
}

type stubViewerService struct {
	result *viewer.GenerateResult
	pages  map[string]string
	index  string
	err    error

	lastInput viewer.GenerateInput
}

func (s *stubViewerService) Generate(ctx context.Context, input viewer.GenerateInput) (*viewer.GenerateResult, error) {
	s.lastInput = input
	return s.result, s.err
}

func (s *stubViewerService) Page(ctx context.Context, viewID string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.pages[viewID], nil
}

func (s *stubViewerService) Index(ctx context.Context) (string, error) {
	return s.index, s.err
}

func (s *stubViewerService) Wait() {}
