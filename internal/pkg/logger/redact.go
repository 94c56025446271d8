package logger

import "strings"

// RedactEmail masks an email address for safe logging.
// "john.doe@example.com" → "jo***@example.com"
// Short local parts (≤2 chars) are fully masked: "ab@example.com" → "***@example.com"
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	name := parts[0]
	if len(name) > 2 {
		return name[:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}

// RedactIP masks the host portion of an IP address while keeping enough to
// correlate log lines. IPv4 keeps the first two octets ("203.0.***.***"),
// IPv6 keeps the first two groups.
func RedactIP(ip string) string {
	if strings.Contains(ip, ":") {
		groups := strings.Split(ip, ":")
		if len(groups) < 2 {
			return "***"
		}
		return groups[0] + ":" + groups[1] + ":***"
	}
	octets := strings.Split(ip, ".")
	if len(octets) != 4 {
		return "***"
	}
	return octets[0] + "." + octets[1] + ".***.***"
}
