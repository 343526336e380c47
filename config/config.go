package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/lsst-ts/ts-Dome/errors"
	"github.com/lsst-ts/ts-Dome/schema"
)

// ConnConfig holds the connection settings for a low-level dome
// controller. Timeouts are converted from the wire representation
// (seconds) into durations at decode time.
type ConnConfig struct {
	Host              string        `json:"host" yaml:"host"`
	Port              int           `json:"port" yaml:"port"`
	ConnectionTimeout time.Duration `json:"connection_timeout" yaml:"connection_timeout"`
	ReadTimeout       time.Duration `json:"read_timeout" yaml:"read_timeout"`
}

// Address returns the host:port dial target.
func (c *ConnConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Decode validates a raw configuration document and converts it into a
// ConnConfig. Absent fields take their documented defaults; schema
// violations are returned as *schema.ValidationError.
func Decode(reg *schema.Registry, raw any) (*ConnConfig, error) {
	clean, verr := schema.Validate(reg, schema.Config, raw)
	if verr != nil {
		return nil, verr
	}

	host := clean["host"].(string)
	if err := checkHost(host); err != nil {
		return nil, errors.WrapInvalid(err, "Config", "Decode", "check host")
	}

	cfg := &ConnConfig{
		Host:              host,
		Port:              int(clean["port"].(float64)),
		ConnectionTimeout: secondsToDuration(clean["connection_timeout"].(float64)),
		ReadTimeout:       secondsToDuration(clean["read_timeout"].(float64)),
	}
	return cfg, nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// checkHost accepts an IP literal or a hostname. The hostname grammar
// is the usual label rule: letters, digits and hyphens, labels joined
// by dots, no label starting or ending with a hyphen.
func checkHost(host string) error {
	if host == "" {
		return fmt.Errorf("%w: host must not be empty", errors.ErrInvalidConfig)
	}
	if net.ParseIP(host) != nil {
		return nil
	}
	for _, label := range strings.Split(host, ".") {
		if !validLabel(label) {
			return fmt.Errorf("%w: %q is not a valid hostname", errors.ErrInvalidConfig, host)
		}
	}
	return nil
}

func validLabel(label string) bool {
	if label == "" || len(label) > 63 {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-':
		default:
			return false
		}
	}
	return true
}
