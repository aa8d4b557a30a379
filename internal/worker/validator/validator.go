// Package validator implements the worker's Script Validator (spec.md
// §4.7): a pattern-based sanity check against a fixed set of forbidden
// shell constructs. It is not a sandbox — acceptance grants no security
// guarantees, only a rejection is definitive.
package validator

import "regexp"

// pattern pairs a compiled regexp with the reason it exists, for logging.
type pattern struct {
	re     *regexp.Regexp
	reason string
}

var patterns = []pattern{
	{regexp.MustCompile(`\brm\s+(-[a-zA-Z]*r[a-zA-Z]*f[a-zA-Z]*|-[a-zA-Z]*f[a-zA-Z]*r[a-zA-Z]*)\s+/`), "destructive filesystem command"},
	{regexp.MustCompile(`\bmkfs\.\w+\b`), "destructive filesystem command"},
	{regexp.MustCompile(`\bdd\s+if=.*of=/dev/`), "destructive filesystem command"},
	{regexp.MustCompile(`\bcurl\b.*\|\s*(ba)?sh\b`), "obfuscated/outbound execution"},
	{regexp.MustCompile(`\bwget\b.*\|\s*(ba)?sh\b`), "obfuscated/outbound execution"},
	{regexp.MustCompile(`\bnc\s+-e\b`), "reverse shell"},
	{regexp.MustCompile(`/dev/tcp/`), "reverse shell"},
	{regexp.MustCompile(`\bbash\s+-i\b`), "reverse shell"},
	{regexp.MustCompile(`\bsudo\b`), "privilege escalation"},
	{regexp.MustCompile(`\bchmod\s+(\+s|[0-7]*[4-7][0-7]{3})\b`), "privilege escalation (setuid)"},
	{regexp.MustCompile(`\bnsenter\b`), "container escape"},
	{regexp.MustCompile(`/proc/\d*/root\b`), "container escape"},
	{regexp.MustCompile(`\bbase64\s+-d\b.*\|\s*(ba)?sh\b`), "obfuscated execution"},
	{regexp.MustCompile(`\beval\s*\(\s*\$\(`), "obfuscated execution"},
	{regexp.MustCompile(`\bcrontab\b`), "persistence/scheduler tampering"},
	{regexp.MustCompile(`/etc/(cron\.\w+|systemd)/`), "persistence/scheduler tampering"},
	{regexp.MustCompile(`\bxmrig\b|\bminerd\b|\bcpuminer\b`), "crypto-miner binary"},
	{regexp.MustCompile(`\$(AWS_SECRET_ACCESS_KEY|AWS_SESSION_TOKEN|GITHUB_TOKEN|API_KEY)\b`), "secret environment variable read"},
	{regexp.MustCompile(`\benv\s*\|\s*(grep|curl|nc)\b`), "secret environment variable read"},
}

// Validate returns the first matched rejection reason, or "" if script
// contains no forbidden construct.
func Validate(script []byte) string {
	s := string(script)
	for _, p := range patterns {
		if p.re.MatchString(s) {
			return p.reason
		}
	}
	return ""
}
