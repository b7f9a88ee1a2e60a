package jobstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/ecoflyer/internal/models"
)

func newStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, ttl), mr
}

func TestRequestRoundTrip(t *testing.T) {
	s, mr := newStore(t, time.Hour)
	ctx := context.Background()

	price := models.Number(150)
	req := models.SearchRequest{
		LatLong:      models.LatLong{Lat: 38.72, Long: -9.14},
		TripLength:   models.TripMedium,
		OutboundDate: "2024-04-03",
		ReturnDate:   "2024-04-10",
		Price:        &price,
	}
	require.NoError(t, s.SaveRequest(ctx, "abc", req))
	assert.True(t, mr.Exists("request_abc"))
	assert.Equal(t, time.Hour, mr.TTL("request_abc"))

	got, err := s.LoadRequest(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, req, got)

	_, err = s.LoadRequest(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestErrorStoredAsJSONString(t *testing.T) {
	s, mr := newStore(t, 0)
	ctx := context.Background()

	require.NoError(t, s.SaveError(ctx, "abc", "Error fetching airports"))

	raw, err := mr.Get("error_abc")
	require.NoError(t, err)
	assert.Equal(t, `"Error fetching airports"`, raw)

	msg, err := s.LoadError(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "Error fetching airports", msg)
}

func TestStatus(t *testing.T) {
	s, _ := newStore(t, time.Hour)
	ctx := context.Background()

	_, err := s.Status(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SaveRequest(ctx, "a", models.SearchRequest{OutboundDate: "2024-04-03"}))
	st, err := s.Status(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, models.JobPending, st.Status)

	require.NoError(t, s.SaveResponse(ctx, "a", []byte(`{"Porto":{}}`)))
	st, err = s.Status(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, models.JobComplete, st.Status)
	assert.JSONEq(t, `{"Porto":{}}`, string(st.Result))

	require.NoError(t, s.SaveRequest(ctx, "b", models.SearchRequest{}))
	require.NoError(t, s.SaveError(ctx, "b", "Error fetching route options"))
	st, err = s.Status(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, models.JobFailed, st.Status)
	assert.Equal(t, "Error fetching route options", st.Error)
}

func TestKeysExpire(t *testing.T) {
	s, mr := newStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, s.SaveResponse(ctx, "a", []byte(`{}`)))
	mr.FastForward(2 * time.Minute)

	_, err := s.LoadResponse(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}
