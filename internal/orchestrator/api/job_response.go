package api

import jobdb "github.com/rvhonorato/job-orchestrator/internal/orchestrator/db"

// jobResponse is the bare JSON shape returned by /upload — the literal Job
// record, per spec.md §4.1 ("Returns the full Job record").
type jobResponse struct {
	ID             uint   `json:"id"`
	UserID         int    `json:"user_id"`
	Service        string `json:"service"`
	Status         string `json:"status"`
	Loc            string `json:"loc"`
	DestID         string `json:"dest_id,omitempty"`
	DestServiceURL string `json:"dest_service_url,omitempty"`
	CreatedAt      int64  `json:"created_at"`
}

func toJobResponse(job *jobdb.Job) jobResponse {
	return jobResponse{
		ID:             job.ID,
		UserID:         job.UserID,
		Service:        job.Service,
		Status:         string(job.Status),
		Loc:            job.Loc,
		DestID:         job.DestID,
		DestServiceURL: job.DestServiceURL,
		CreatedAt:      job.CreatedAt.Unix(),
	}
}
