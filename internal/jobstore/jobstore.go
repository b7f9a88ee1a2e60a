// Package jobstore parks asynchronous search requests and their outcomes in
// Redis under request_<id>, response_<id> and error_<id>.
package jobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dharmasatrya/ecoflyer/internal/models"
)

const (
	requestPrefix  = "request_"
	responsePrefix = "response_"
	errorPrefix    = "error_"
)

var ErrNotFound = errors.New("job not found")

type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// New returns a store whose keys expire after ttl. A zero ttl keeps keys
// until deleted.
func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) SaveRequest(ctx context.Context, id string, req models.SearchRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, requestPrefix+id, data, s.ttl).Err()
}

func (s *Store) LoadRequest(ctx context.Context, id string) (models.SearchRequest, error) {
	var req models.SearchRequest
	data, err := s.get(ctx, requestPrefix+id)
	if err != nil {
		return req, err
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("decoding request %s: %w", id, err)
	}
	return req, nil
}

// SaveResponse stores the serialized result set.
func (s *Store) SaveResponse(ctx context.Context, id string, body []byte) error {
	return s.client.Set(ctx, responsePrefix+id, body, s.ttl).Err()
}

func (s *Store) LoadResponse(ctx context.Context, id string) ([]byte, error) {
	return s.get(ctx, responsePrefix+id)
}

// SaveError stores the user-facing failure message as a JSON string.
func (s *Store) SaveError(ctx context.Context, id string, message string) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, errorPrefix+id, data, s.ttl).Err()
}

func (s *Store) LoadError(ctx context.Context, id string) (string, error) {
	data, err := s.get(ctx, errorPrefix+id)
	if err != nil {
		return "", err
	}
	var message string
	if err := json.Unmarshal(data, &message); err != nil {
		return "", fmt.Errorf("decoding error %s: %w", id, err)
	}
	return message, nil
}

// Status reports a job as complete, failed or pending. A job with no request,
// response or error is ErrNotFound.
func (s *Store) Status(ctx context.Context, id string) (models.JobStatus, error) {
	status := models.JobStatus{ID: id}

	body, err := s.LoadResponse(ctx, id)
	switch {
	case err == nil:
		status.Status = models.JobComplete
		status.Result = body
		return status, nil
	case !errors.Is(err, ErrNotFound):
		return status, err
	}

	message, err := s.LoadError(ctx, id)
	switch {
	case err == nil:
		status.Status = models.JobFailed
		status.Error = message
		return status, nil
	case !errors.Is(err, ErrNotFound):
		return status, err
	}

	n, err := s.client.Exists(ctx, requestPrefix+id).Result()
	if err != nil {
		return status, err
	}
	if n == 0 {
		return status, ErrNotFound
	}
	status.Status = models.JobPending
	return status, nil
}

func (s *Store) get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}
