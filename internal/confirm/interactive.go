package confirm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"socguard/pkg/models"
)

// Interactive prompts on a terminal. Reads block with no timeout; a
// caller that wants a deadline cancels the context.
type Interactive struct {
	in     *bufio.Reader
	out    io.Writer
	phrase string
}

// NewInteractive creates a terminal prompter. The confirmation phrase is
// only used for display; matching happens in the arbiter.
func NewInteractive(phrase string) *Interactive {
	return &Interactive{
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		phrase: phrase,
	}
}

// NewInteractiveWith creates a terminal prompter over explicit streams.
func NewInteractiveWith(in io.Reader, out io.Writer, phrase string) *Interactive {
	return &Interactive{in: bufio.NewReader(in), out: out, phrase: phrase}
}

// PromptMassIsolation displays the full exception summary and reads the
// operator's decision line.
func (p *Interactive) PromptMassIsolation(ctx context.Context, exc models.MassException) (string, error) {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, strings.Repeat("=", 70))
	fmt.Fprintln(p.out, "MASS ISOLATION EXCEPTION TRIGGERED")
	fmt.Fprintln(p.out, strings.Repeat("=", 70))
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, "A widespread security incident has been detected:")
	fmt.Fprintln(p.out)
	fmt.Fprintf(p.out, "  CRITICAL confidence threats: %d\n", exc.CriticalCount)
	fmt.Fprintf(p.out, "  HIGH confidence threats:     %d\n", exc.HighCount)
	fmt.Fprintf(p.out, "  Total HIGH/CRITICAL:         %d\n", exc.TotalHighCritical)
	fmt.Fprintf(p.out, "  Devices affected:            %d\n", exc.DeviceCount)
	fmt.Fprintln(p.out)

	if len(exc.Summary) > 0 {
		fmt.Fprintln(p.out, "Sample threats (first 3):")
		shown := exc.Summary
		if len(shown) > 3 {
			shown = shown[:3]
		}
		for i, t := range shown {
			fmt.Fprintf(p.out, "  %d. [%s] %s\n", i+1, strings.ToUpper(t.Confidence), t.Title)
			fmt.Fprintf(p.out, "     Device: %s\n", t.DeviceName)
			if len(t.IOCs) > 0 {
				fmt.Fprintf(p.out, "     IOCs: %s\n", strings.Join(t.IOCs, ", "))
			}
		}
		if len(exc.Summary) > 3 {
			fmt.Fprintf(p.out, "  ... and %d more threats\n", len(exc.Summary)-3)
		}
		fmt.Fprintln(p.out)
	}

	fmt.Fprintf(p.out, "WARNING: this will isolate %d machines from the network.\n\n", exc.TotalHighCritical)
	fmt.Fprintf(p.out, "To approve mass isolation, type exactly: %s\n", p.phrase)
	fmt.Fprintln(p.out, "To decline, type anything else or press Enter.")
	fmt.Fprint(p.out, "\nYour decision: ")

	return p.readLine(ctx)
}

// ConfirmIsolation asks a yes/no question for one threat. Any answer
// starting with "y" approves.
func (p *Interactive) ConfirmIsolation(ctx context.Context, device string, threat models.Threat) (bool, error) {
	fmt.Fprintf(p.out, "\n[!] %s confidence threat detected on host: %s\n", strings.ToUpper(threat.Confidence), device)
	fmt.Fprintf(p.out, "    %s\n", threat.Title)
	fmt.Fprint(p.out, "Would you like to isolate this VM? (yes/no): ")

	line, err := p.readLine(ctx)
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "y"), nil
}

// readLine reads one input line, honoring context cancellation. A
// cancelled context resolves to a decline upstream; the pending read is
// abandoned rather than interrupted.
func (p *Interactive) readLine(ctx context.Context) (string, error) {
	type lineResult struct {
		line string
		err  error
	}
	ch := make(chan lineResult, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		ch <- lineResult{line: strings.TrimRight(line, "\r\n"), err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.err != nil && res.line == "" {
			return "", res.err
		}
		return res.line, nil
	}
}
