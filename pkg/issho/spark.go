package issho

import (
	"context"

	"github.com/rileyhilliard/issho/internal/submit"
)

// SparkSubmit runs spark-submit for job. The profile's SPARK_CONF is used
// when job.Conf is empty. An invalid job fails before anything is sent.
func (s *Session) SparkSubmit(ctx context.Context, job submit.Job) (Result, error) {
	if err := job.Validate(); err != nil {
		return Result{ExitCode: -1}, err
	}
	if job.Conf == "" {
		job.Conf = s.config.SparkConf
	}
	return s.Exec(ctx, ExecOptions{}, job.Command())
}

// Spark is an alias for SparkSubmit.
func (s *Session) Spark(ctx context.Context, job submit.Job) (Result, error) {
	return s.SparkSubmit(ctx, job)
}
