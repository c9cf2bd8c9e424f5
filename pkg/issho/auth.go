package issho

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/issho/internal/credentials"
	"github.com/rileyhilliard/issho/internal/errors"
)

// Kinit gets a Kerberos ticket on the remote host using the password
// stored for this profile. The password is piped to kinit's stdin, so it
// never appears on a command line, and is wiped from memory afterwards.
func (s *Session) Kinit(ctx context.Context) error {
	secret, err := credentials.Lookup(s.creds, s.profile, credentials.KindKinit, s.localUser)
	if err != nil {
		return err
	}
	defer secret.Destroy()

	res, err := s.Exec(ctx, ExecOptions{Mode: ModeCapture, Stdin: secret.Reader()}, "kinit")
	if err != nil {
		return err
	}
	if !res.OK() {
		return errors.New(errors.ErrCredential,
			fmt.Sprintf("kinit on '%s' exited %d", s.profile, res.ExitCode),
			"The stored password may be out of date. Update it with: issho config "+s.profile)
	}

	s.log.Debug("kinit ok for %s", s.profile)
	return nil
}
