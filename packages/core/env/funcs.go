package env

import (
	"encoding/base64"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Func is a template function callable as {{name(args)}}.
type Func func(args []string) (any, error)

// Funcs is a table of template functions.
type Funcs struct {
	funcs map[string]Func
}

func NewFuncs() *Funcs {
	f := &Funcs{funcs: make(map[string]Func)}
	f.funcs["uuid"] = funcUUID
	f.funcs["now"] = funcNow
	f.funcs["timestamp"] = funcTimestamp
	f.funcs["random"] = funcRandom
	f.funcs["randomString"] = funcRandomString
	f.funcs["randomEmail"] = funcRandomEmail
	f.funcs["base64"] = funcBase64
	return f
}

func (f *Funcs) Register(name string, fn Func) {
	f.funcs[name] = fn
}

var funcCallPattern = regexp.MustCompile(`^(\w+)\((.*)\)$`)

// Call evaluates an expression such as random(1, 10). It reports false for
// unknown functions, malformed calls and bad arguments.
func (f *Funcs) Call(expr string) (any, bool) {
	m := funcCallPattern.FindStringSubmatch(strings.TrimSpace(expr))
	if m == nil {
		return nil, false
	}
	fn, ok := f.funcs[m[1]]
	if !ok {
		return nil, false
	}
	v, err := fn(splitArgs(m[2]))
	if err != nil {
		return nil, false
	}
	return v, true
}

func splitArgs(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	args := make([]string, len(parts))
	for i, p := range parts {
		args[i] = strings.Trim(strings.TrimSpace(p), `"'`)
	}
	return args
}

func funcUUID(_ []string) (any, error) {
	return uuid.NewString(), nil
}

func funcNow(_ []string) (any, error) {
	return time.Now().UTC().Format(time.RFC3339), nil
}

func funcTimestamp(_ []string) (any, error) {
	return time.Now().Unix(), nil
}

func funcRandom(args []string) (any, error) {
	lo, hi := 0, 100
	if len(args) >= 2 {
		var err error
		if lo, err = strconv.Atoi(args[0]); err != nil {
			return nil, fmt.Errorf("random: min %q is not an integer", args[0])
		}
		if hi, err = strconv.Atoi(args[1]); err != nil {
			return nil, fmt.Errorf("random: max %q is not an integer", args[1])
		}
	}
	if hi < lo {
		return nil, fmt.Errorf("random: max %d below min %d", hi, lo)
	}
	return rand.Intn(hi-lo+1) + lo, nil
}

func funcRandomString(args []string) (any, error) {
	length := 16
	if len(args) >= 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("randomString: bad length %q", args[0])
		}
		length = n
	}
	return randomString(length, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"), nil
}

func funcRandomEmail(_ []string) (any, error) {
	user := randomString(8, "abcdefghijklmnopqrstuvwxyz")
	domain := randomString(6, "abcdefghijklmnopqrstuvwxyz")
	return fmt.Sprintf("%s@%s.com", user, domain), nil
}

func funcBase64(args []string) (any, error) {
	if len(args) < 1 {
		return "", nil
	}
	return base64.StdEncoding.EncodeToString([]byte(args[0])), nil
}

func randomString(length int, charset string) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
