package mpv

import (
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/reelkit/reel/backend"
	"github.com/reelkit/reel/key"
	"github.com/reelkit/reel/log"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// MinVersion is the oldest mpv whose IPC protocol the engine relies on.
const MinVersion = "0.33.0"

var (
	binary     = &backend.Lifecycle{Name: "mpv"}
	binaryPath string
	versionRe  = regexp.MustCompile(`mpv v?(\d+\.\d+(?:\.\d+)?)`)
)

// locate resolves the configured mpv binary and checks its version. It runs once per
// process through the backend lifecycle.
func locate() error {
	path, err := exec.LookPath(viper.GetString(key.MpvPath))
	if err != nil {
		return fmt.Errorf("find mpv: %w", err)
	}

	out, err := exec.Command(path, "--version").Output()
	if err != nil {
		return fmt.Errorf("%s --version: %w", path, err)
	}

	version, ok := parseVersion(string(out))
	if !ok {
		log.Warnf("mpv: could not read version from %q, assuming it is recent", firstLine(string(out)))
	} else if cmp, err := compareVersions(version, MinVersion); err == nil && cmp < 0 {
		return fmt.Errorf("mpv %s is older than %s", version, MinVersion)
	}

	binaryPath = path
	log.Infof("mpv: using %s (%s)", path, lo.Ternary(ok, version, "unknown version"))
	return nil
}

// Teardown forgets the located binary so the next engine looks it up again.
func Teardown() {
	binary.Teardown()
}

func parseVersion(output string) (string, bool) {
	m := versionRe.FindStringSubmatch(output)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// compareVersions returns 1 if a > b, -1 if a < b and 0 if equal. A missing patch is zero.
func compareVersions(a, b string) (int, error) {
	type version struct {
		major, minor, patch int
	}

	parse := func(s string) (version, error) {
		var v version
		s = strings.TrimPrefix(s, "v")
		if strings.Count(s, ".") == 1 {
			s += ".0"
		}
		_, err := fmt.Sscanf(s, "%d.%d.%d", &v.major, &v.minor, &v.patch)
		return v, err
	}

	av, err := parse(a)
	if err != nil {
		return 0, err
	}
	bv, err := parse(b)
	if err != nil {
		return 0, err
	}

	for _, pair := range []lo.Tuple2[int, int]{
		{A: av.major, B: bv.major},
		{A: av.minor, B: bv.minor},
		{A: av.patch, B: bv.patch},
	} {
		if pair.A > pair.B {
			return 1, nil
		}
		if pair.A < pair.B {
			return -1, nil
		}
	}
	return 0, nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// Check locates mpv if that has not happened yet and returns the binary in use.
func Check() (string, error) {
	result := make(chan error, 1)
	binary.Run(func(err error) { result <- err })
	go func() {
		_ = binary.Init(locate)
	}()

	if err := <-result; err != nil {
		return "", err
	}
	return binaryPath, nil
}
