package transport

import (
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledstrip/internal/command"
	diag "github.com/coreman2200/ledstrip/internal/diagnostics"
)

// Adapter feeds decoded writes into the renderer's mailbox. It is safe for
// concurrent use by several connections.
type Adapter struct {
	inbox  *command.Mailbox
	report diag.Reporter
}

func NewAdapter(inbox *command.Mailbox, report diag.Reporter) *Adapter {
	if report == nil {
		report = diag.Discard
	}
	return &Adapter{inbox: inbox, report: report}
}

// Write decodes ev and posts the result. Malformed writes are logged,
// reported and returned; nothing reaches the mailbox for them.
func (a *Adapter) Write(ev WriteEvent) error {
	cmd, err := Decode(ev)
	if err != nil {
		log.Warn().Err(err).Stringer("attr", ev.Attr).Int("len", len(ev.Data)).Msg("write ignored")
		a.report.Report(diag.Diagnostic{
			Severity: diag.Warn,
			Code:     diag.CodeWriteIgnored,
			Summary:  "Attribute write ignored",
			Detail:   err.Error(),
			Evidence: map[string]any{"attr": uint8(ev.Attr), "len": len(ev.Data)},
		})
		return err
	}
	if ev.Attr == AttrSpeed && cmd.Kind == command.Noop {
		a.report.Report(diag.Diagnostic{
			Severity: diag.Info,
			Code:     diag.CodeSpeedRejected,
			Summary:  "Speed write was not a finite float32",
			Evidence: map[string]any{"data": ev.Data},
		})
	}

	before := a.inbox.Dropped()
	a.inbox.Send(cmd)
	log.Debug().Stringer("cmd", cmd).Msg("queued")
	if a.inbox.Dropped() > before {
		a.report.Report(diag.Diagnostic{
			Severity: diag.Info,
			Code:     diag.CodeCommandDropped,
			Summary:  "Older pending command replaced",
			Evidence: map[string]any{"dropped_total": a.inbox.Dropped()},
		})
	}
	return nil
}

// Inbox is the mailbox writes are posted to.
func (a *Adapter) Inbox() *command.Mailbox { return a.inbox }
