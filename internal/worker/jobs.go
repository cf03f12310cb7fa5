package worker

import (
	"encoding/json"
	"strings"
	"time"

	"matchvault/internal/services"
)

// Job command names carried in the queue payload. The wire shape is shared
// with the enqueueing side, so these values are part of the queue contract.
const (
	CommandMatchUpload = "Match_Upload"
	CommandMergeVideo  = "Merge_Video"
)

// Job is the queue payload. Exactly one command's fields are populated.
type Job struct {
	Command    string `json:"command"`
	MatchID    string `json:"matchId,omitempty"`
	Video1     string `json:"video1,omitempty"`
	Video2     string `json:"video2,omitempty"`
	OutputName string `json:"output_name,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// NewUploadJob builds a single-match acquisition job.
func NewUploadJob(matchID string) Job {
	return Job{
		Command:   CommandMatchUpload,
		MatchID:   matchID,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// NewMergeJob builds a two-video concatenation job.
func NewMergeJob(video1, video2, outputName string) Job {
	return Job{
		Command:    CommandMergeVideo,
		Video1:     video1,
		Video2:     video2,
		OutputName: outputName,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
}

// Encode serializes the job for enqueueing.
func (j Job) Encode() (string, error) {
	data, err := json.Marshal(j)
	if err != nil {
		return "", services.Wrap(services.ErrDecode, "worker", "encode", "marshal job", err)
	}
	return string(data), nil
}

// DecodeJob parses a queue payload. Only structural problems are errors;
// an unknown command decodes successfully and is the dispatcher's concern.
func DecodeJob(body string) (Job, error) {
	var job Job
	if err := json.Unmarshal([]byte(body), &job); err != nil {
		return Job{}, services.Wrap(services.ErrDecode, "worker", "decode", "malformed job payload", err)
	}
	if strings.TrimSpace(job.Command) == "" {
		return Job{}, services.Wrap(services.ErrDecode, "worker", "decode", "job payload missing command", nil)
	}
	return job, nil
}

// Validate checks that the fields the command requires are present.
func (j Job) Validate() error {
	switch j.Command {
	case CommandMatchUpload:
		if strings.TrimSpace(j.MatchID) == "" {
			return services.Wrap(services.ErrDecode, "worker", "validate", "upload job missing matchId", nil)
		}
	case CommandMergeVideo:
		if strings.TrimSpace(j.Video1) == "" || strings.TrimSpace(j.Video2) == "" {
			return services.Wrap(services.ErrDecode, "worker", "validate", "merge job missing a video reference", nil)
		}
		if strings.TrimSpace(j.OutputName) == "" {
			return services.Wrap(services.ErrDecode, "worker", "validate", "merge job missing output_name", nil)
		}
	}
	return nil
}
