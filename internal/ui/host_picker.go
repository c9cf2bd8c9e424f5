package ui

import (
	"github.com/charmbracelet/huh"

	"github.com/rileyhilliard/issho/pkg/sshutil"
)

// ManualHost is the picker value meaning "type an alias instead".
const ManualHost = "\x00manual"

// HostOptions turns SSH config entries into select options, labelled with
// the alias and where it points, followed by a manual-entry choice.
func HostOptions(hosts []sshutil.SSHHostEntry) []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(hosts)+1)
	for _, h := range hosts {
		label := h.Alias
		if desc := h.Description(); desc != "" {
			label += "  " + Muted(desc)
		}
		options = append(options, huh.NewOption(label, h.Alias))
	}
	return append(options, huh.NewOption("Enter an alias manually", ManualHost))
}

// PickHost asks the user to choose one of hosts. It returns ManualHost when
// they'd rather type one in.
func PickHost(title string, hosts []sshutil.SSHHostEntry) (string, error) {
	var selected string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(HostOptions(hosts)...).
				Value(&selected),
		),
	)
	if err := form.Run(); err != nil {
		return "", err
	}
	return selected, nil
}
