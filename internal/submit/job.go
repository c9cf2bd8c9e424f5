package submit

import (
	"strings"

	"github.com/rileyhilliard/issho/internal/errors"
)

// Job is a spark-submit invocation. The shorthand fields are merged over
// Options under their canonical flag names, so a shorthand value beats the
// same flag given in Options.
type Job struct {
	Options *Options

	Master           string
	Jars             string
	Files            string
	DriverClassPath  string
	ApplicationClass string // rendered as --class

	// Application is the jar or python file to run. Required.
	Application     string
	ApplicationArgs []string

	// Conf is appended verbatim after the options, for profile-wide
	// defaults such as "--conf spark.yarn.queue=etl".
	Conf string
}

// shorthand lists the named fields in the order they are merged.
func (j Job) shorthand() []struct{ key, value string } {
	return []struct{ key, value string }{
		{"master", j.Master},
		{"jars", j.Jars},
		{"files", j.Files},
		{"driver_class_path", j.DriverClassPath},
		{"class", j.ApplicationClass},
	}
}

// Validate checks that the job can be submitted.
func (j Job) Validate() error {
	if strings.TrimSpace(j.Application) == "" {
		return errors.New(errors.ErrSubmission,
			"spark-submit needs an application",
			"Pass the jar or python file to run, e.g. issho spark app.jar")
	}
	return nil
}

// MergedOptions returns Options with the shorthand fields overlaid.
// Empty shorthand fields leave Options untouched.
func (j Job) MergedOptions() *Options {
	merged := j.Options.Clone()
	for _, f := range j.shorthand() {
		if f.value != "" {
			merged.Set(f.key, f.value)
		}
	}
	return merged.Clean()
}

// Command renders the spark-submit command line. Call Validate first;
// Command doesn't check for a missing application.
func (j Job) Command() string {
	parts := []string{"spark-submit"}
	parts = append(parts, j.MergedOptions().Render()...)
	if conf := strings.TrimSpace(j.Conf); conf != "" {
		parts = append(parts, conf)
	}
	parts = append(parts, strings.TrimSpace(j.Application))
	for _, a := range j.ApplicationArgs {
		if a != "" {
			parts = append(parts, a)
		}
	}
	return strings.Join(parts, " ")
}
