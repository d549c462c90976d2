package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wiederlebendig/lead-attribution-service/internal/dto"
)

// cronJob names a sub-endpoint the composite cron fans out to.
type cronJob struct {
	name string
	path string
}

// dailyJobs run in order; the spend sync first so nurture decisions see the
// freshest ledger.
var dailyJobs = []cronJob{
	{name: "sync_ad_spend", path: "/api/admin/ads/sync-spend"},
	{name: "nurture_leads", path: "/api/admin/leads/nurture"},
}

// CronRunner fans a composite cron invocation out to the admin sub-endpoints
// over HTTP, forwarding the shared bearer secret.
type CronRunner struct {
	baseURL    string
	secret     string
	httpClient *http.Client
	log        *zap.Logger
}

// NewCronRunner creates a new cron runner
func NewCronRunner(baseURL, secret string, log *zap.Logger) *CronRunner {
	return &CronRunner{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		secret:     secret,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		log:        log,
	}
}

// RunDaily executes the daily jobs sequentially. A failed sub-job is recorded
// and does not abort the rest; overall success means every sub-job succeeded.
func (r *CronRunner) RunDaily(ctx context.Context) *dto.CronResponse {
	resp := &dto.CronResponse{
		Success: true,
		Results: make(map[string]dto.CronJobResult, len(dailyJobs)),
	}

	for _, job := range dailyJobs {
		if err := r.runJob(ctx, job); err != nil {
			r.log.Error("Cron sub-job failed",
				zap.String("job", job.name),
				zap.Error(err))
			resp.Success = false
			resp.Results[job.name] = dto.CronJobResult{Success: false, Error: err.Error()}
			continue
		}

		r.log.Info("Cron sub-job completed", zap.String("job", job.name))
		resp.Results[job.name] = dto.CronJobResult{Success: true}
	}

	return resp
}

func (r *CronRunner) runJob(ctx context.Context, job cronJob) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+job.path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.secret)

	res, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			r.log.Error("Failed to close cron sub-job response body", zap.Error(err))
		}
	}()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return fmt.Errorf("status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	return nil
}
