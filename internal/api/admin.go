package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/k8s/resources"
)

func (c *Client) ListUsers(ctx context.Context) ([]resources.User, error) {
	var users []resources.User
	if err := c.do(ctx, http.MethodGet, constants.UsersPath, nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) CreateUser(ctx context.Context, u resources.User) (*resources.User, error) {
	var created resources.User
	if err := c.do(ctx, http.MethodPost, constants.UsersPath, nil, u, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, constants.UsersPath+"/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) ListGroups(ctx context.Context) ([]resources.Group, error) {
	var groups []resources.Group
	if err := c.do(ctx, http.MethodGet, constants.GroupsPath, nil, nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (c *Client) GetAuditSettings(ctx context.Context) (*resources.AuditSettings, error) {
	var settings resources.AuditSettings
	if err := c.do(ctx, http.MethodGet, constants.AuditSettingsPath, nil, nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (c *Client) UpdateAuditSettings(ctx context.Context, s resources.AuditSettings) (*resources.AuditSettings, error) {
	var settings resources.AuditSettings
	if err := c.do(ctx, http.MethodPut, constants.AuditSettingsPath, nil, s, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}
