package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"socguard/internal/logger"
	"socguard/pkg/models"
)

// SMTPConfig configures email alert delivery.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// SMTPNotifier emails alerts to the SOC lead.
type SMTPNotifier struct {
	cfg  SMTPConfig
	addr string
	now  func() time.Time
}

// NewSMTPNotifier creates an email notifier.
func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	if cfg.Host == "" || cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("smtp host, username and password are required")
	}
	if cfg.To == "" {
		return nil, fmt.Errorf("smtp recipient is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPNotifier{
		cfg:  cfg,
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		now:  time.Now,
	}, nil
}

func (n *SMTPNotifier) send(subject, body string) {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", n.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", n.cfg.To)
	fmt.Fprintf(&msg, "Date: %s\r\n", n.now().UTC().Format(time.RFC1123Z))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := sasl.NewPlainClient("", n.cfg.Username, n.cfg.Password)
	if err := smtp.SendMail(n.addr, auth, n.cfg.From, []string{n.cfg.To}, strings.NewReader(msg.String())); err != nil {
		logger.Errorf("Failed to send email alert %q: %v", subject, err)
		return
	}
	logger.Infof("Email alert sent to %s: %s", n.cfg.To, subject)
}

func (n *SMTPNotifier) stamp() string {
	return n.now().UTC().Format("2006-01-02 15:04:05 UTC")
}

// RateLimitExceeded alerts when an isolation rate limit trips.
func (n *SMTPNotifier) RateLimitExceeded(count int, window string) {
	subject := fmt.Sprintf("SOC Agent Alert: Rate Limit Exceeded (%d isolations in %s)", count, window)
	body := fmt.Sprintf(`SOC Agent Rate Limit Alert
===========================

Time: %s
Event: Isolation rate limit exceeded

Details:
- Isolations: %d in %s
- Status: Agent activity paused pending review

Action Required:
The SOC Agent has paused isolation operations due to exceeding rate limits.
This could indicate:
1. Legitimate widespread security incident
2. Misconfigured detection rules
3. Potential compromise of agent or credentials

Please review recent isolation events and approve continuation if appropriate.
`, n.stamp(), count, window)
	n.send(subject, body)
}

// MassIsolationAttempt alerts when the agent locks itself after a
// suspected mass-isolation attack.
func (n *SMTPNotifier) MassIsolationAttempt(count int, actor string) {
	subject := "CRITICAL: Potential Mass Isolation Attack Detected"
	body := fmt.Sprintf(`CRITICAL SECURITY ALERT
=======================

Time: %s
Event: Mass isolation attempt detected

Details:
- Attempted isolations: %d
- User/Session: %s
- Status: Agent LOCKED, requires manual unlock

IMMEDIATE ACTION REQUIRED:
The agent has detected and blocked a potential mass isolation attack.
This could indicate:
1. Compromised user credentials
2. Malicious insider activity
3. Agent malfunction

The agent has been automatically locked and will not perform further
isolations until manually unlocked by an administrator.
`, n.stamp(), count, actor)
	n.send(subject, body)
}

// DailyLimitReached alerts when the daily limit requires SOC lead approval.
func (n *SMTPNotifier) DailyLimitReached(actor string) {
	subject := "SOC Agent: Daily Isolation Limit Reached - Approval Required"
	body := fmt.Sprintf(`SOC Agent Limit Alert
=====================

Time: %s
Event: Daily isolation limit reached

Details:
- User/Session: %s
- Status: SOC lead approval required for additional isolations

Action Required:
The SOC Agent has reached the daily isolation limit. Additional isolations
require SOC lead approval.
`, n.stamp(), actor)
	n.send(subject, body)
}

// IsolationDeclined alerts when an analyst declines a high-confidence
// isolation; the decline itself is a reportable decision.
func (n *SMTPNotifier) IsolationDeclined(device, threatTitle, confidence, actor string) {
	subject := "SOC Agent Alert: High-Confidence Threat Isolation Declined"
	body := fmt.Sprintf(`SOC Agent Decision Alert
========================

Time: %s
Event: User declined to isolate high-confidence threat

Details:
- Device: %s
- Threat: %s
- Confidence: %s
- Decision by: %s

Action Required:
A %s confidence threat was detected but isolation was declined. Please
review the threat assessment and ensure appropriate alternative actions
are taken.
`, n.stamp(), device, threatTitle, confidence, actor, strings.ToUpper(confidence))
	n.send(subject, body)
}

// MassIsolationDecision alerts the SOC lead about a mass-isolation
// approval or decline, with a short threat summary.
func (n *SMTPNotifier) MassIsolationDecision(deviceCount, threatCount int, decision, actor string, summary []models.ThreatSummary) {
	decisionText := strings.ToUpper(decision)
	subject := fmt.Sprintf("Mass Isolation %s: %d devices", decisionText, deviceCount)

	var details strings.Builder
	if len(summary) > 0 {
		details.WriteString("\nThreat Summary:\n----------------------------------------\n")
		shown := summary
		if len(shown) > 5 {
			shown = shown[:5]
		}
		for i, t := range shown {
			iocs := t.IOCs
			if len(iocs) > 3 {
				iocs = iocs[:3]
			}
			fmt.Fprintf(&details, "%d. [%s] %s\n   Device: %s\n   IOCs: %s\n\n",
				i+1, strings.ToUpper(t.Confidence), t.Title, t.DeviceName, strings.Join(iocs, ", "))
		}
		if len(summary) > 5 {
			fmt.Fprintf(&details, "... and %d more threats\n", len(summary)-5)
		}
	}

	action := "Mass isolation was declined - manual review required"
	if decision == "approved" {
		action = "All affected devices are being isolated"
	}

	body := fmt.Sprintf(`SOC Agent Mass Isolation Decision
==================================

Time: %s
Event: Mass isolation %s by analyst

Decision Summary:
- Devices affected: %d
- Threats detected: %d
- Decision: %s
- Decided by: %s
- Justification: Widespread HIGH/CRITICAL confidence threats detected
%s
Action Taken: %s
`, n.stamp(), decisionText, deviceCount, threatCount, decisionText, actor, details.String(), action)
	n.send(subject, body)
}
