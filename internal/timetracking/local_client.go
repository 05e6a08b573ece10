package timetracking

import (
	"context"

	"focussync/internal/model"
	"focussync/internal/service"
)

// LocalClient runs the time-tracking service in-process for a single user.
type LocalClient struct {
	service *service.TimeTrackingService
	userID  string
}

func NewLocalClient(timeTrackingService *service.TimeTrackingService, userID string) *LocalClient {
	return &LocalClient{service: timeTrackingService, userID: userID}
}

func (c *LocalClient) Start(ctx context.Context, params model.TimeTrackingStart) (*model.TimeTrackingLog, error) {
	log, apiErr := c.service.Start(ctx, c.userID, params)
	if apiErr != nil {
		return nil, apiErr
	}
	return log, nil
}

func (c *LocalClient) Stop(ctx context.Context) (*model.TimeTrackingLog, error) {
	log, apiErr := c.service.Stop(ctx, c.userID)
	if apiErr != nil {
		return nil, apiErr
	}
	return log, nil
}

func (c *LocalClient) Pause(ctx context.Context) (*model.TimeTrackingLog, error) {
	log, apiErr := c.service.Pause(ctx, c.userID)
	if apiErr != nil {
		return nil, apiErr
	}
	return log, nil
}

func (c *LocalClient) Resume(ctx context.Context) (*model.TimeTrackingLog, error) {
	log, apiErr := c.service.Resume(ctx, c.userID)
	if apiErr != nil {
		return nil, apiErr
	}
	return log, nil
}

func (c *LocalClient) Cancel(ctx context.Context) error {
	if apiErr := c.service.Cancel(ctx, c.userID); apiErr != nil {
		return apiErr
	}
	return nil
}

func (c *LocalClient) GetActive(ctx context.Context) (*model.TimeTrackingLog, error) {
	log, apiErr := c.service.GetActive(ctx, c.userID)
	if apiErr != nil {
		return nil, apiErr
	}
	return log, nil
}

func (c *LocalClient) GetStats(ctx context.Context) (*model.TimeTrackingStats, error) {
	stats, apiErr := c.service.GetStats(ctx, c.userID)
	if apiErr != nil {
		return nil, apiErr
	}
	return stats, nil
}

func (c *LocalClient) History(ctx context.Context, limit int) ([]model.TimeTrackingLog, error) {
	logs, apiErr := c.service.GetHistory(ctx, c.userID, limit)
	if apiErr != nil {
		return nil, apiErr
	}
	return logs, nil
}
