package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hh-tools/hhscan/types"
)

const searchResponse = `{
	"items": [
		{
			"name": "Go Developer",
			"alternate_url": "https://hh.ru/vacancy/1",
			"salary": {"from": 150000, "to": 250000, "currency": "RUR"},
			"snippet": {"requirement": "Go, Docker"}
		},
		{
			"name": "Backend Engineer",
			"alternate_url": "https://hh.ru/vacancy/2",
			"salary": null,
			"snippet": {"requirement": null}
		}
	]
}`

func newTestClient(url string) *HHClient {
	return NewHHClientWithRetry(url, 113, 100, time.Second, 3, time.Millisecond, 5*time.Millisecond)
}

func TestGetVacanciesSuccess(t *testing.T) {
	var gotQuery, gotArea, gotPerPage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/vacancies", r.URL.Path)
		gotQuery = r.URL.Query().Get("text")
		gotArea = r.URL.Query().Get("area")
		gotPerPage = r.URL.Query().Get("per_page")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchResponse))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	vacancies, err := client.GetVacancies(context.Background(), "golang")
	require.NoError(t, err)

	assert.Equal(t, "golang", gotQuery)
	assert.Equal(t, "113", gotArea)
	assert.Equal(t, "100", gotPerPage)

	require.Len(t, vacancies, 2)
	assert.Equal(t, "Go Developer", vacancies[0].Title)
	assert.Equal(t, "https://hh.ru/vacancy/1", vacancies[0].Link)
	require.NotNil(t, vacancies[0].Salary)
	assert.Equal(t, types.Salary{From: 150000, To: 250000, Currency: "RUR"}, *vacancies[0].Salary)
	assert.Equal(t, "Go, Docker", vacancies[0].Requirements)

	assert.Nil(t, vacancies[1].Salary)
	assert.Zero(t, vacancies[1].AverageSalary())
}

func TestGetVacanciesRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"items": []}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	vacancies, err := client.GetVacancies(context.Background(), "golang")
	require.NoError(t, err)
	assert.Empty(t, vacancies)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetVacanciesExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.GetVacancies(context.Background(), "golang")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamFailure)
	assert.Contains(t, err.Error(), "exhausted retries")
}

func TestGetVacanciesBadQueryNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.GetVacancies(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadQuery)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetVacanciesContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewHHClientWithRetry(srv.URL, 113, 100, time.Second, 3, time.Hour, time.Hour)
	_, err := client.GetVacancies(ctx, "golang")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetVacanciesMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": [`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.GetVacancies(context.Background(), "golang")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse response")
}

func TestPerPageClamped(t *testing.T) {
	client := NewHHClient("https://api.hh.ru", 113, 0, time.Second)
	assert.Equal(t, 100, client.perPage)

	client = NewHHClient("https://api.hh.ru", 113, 500, time.Second)
	assert.Equal(t, 100, client.perPage)
}
