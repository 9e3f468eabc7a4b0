package migrate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var migrationName = regexp.MustCompile(`^(\d{14})_[a-z0-9]+(?:_[a-z0-9]+)*\.sql$`)

func fileVersion(name string) (int64, bool) {
	m := migrationName.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseInt(m[1], 10, 64)
	return v, err == nil
}

// ValidateDir checks the migrations under dir. See Validate.
func ValidateDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("migrate: dir is required")
	}
	return Validate(os.DirFS(dir))
}

// Validate checks every .sql file at the root of fsys: names follow
// <YYYYMMDDHHMMSS>_<snake_case>.sql, versions are unique, the Up section
// precedes the Down section and StatementBegin/End markers pair up. All
// problems are reported together.
func Validate(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("migrate: read migrations: %w", err)
	}

	var problems []error
	byVersion := map[int64]string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		version, ok := fileVersion(name)
		if !ok {
			problems = append(problems, fmt.Errorf("%s: name must be YYYYMMDDHHMMSS_snake_case.sql", name))
			continue
		}
		if other, dup := byVersion[version]; dup {
			problems = append(problems, fmt.Errorf("%s: version %d already used by %s", name, version, other))
		}
		byVersion[version] = name

		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			problems = append(problems, fmt.Errorf("%s: %w", name, err))
			continue
		}
		problems = append(problems, checkSections(name, string(body))...)
	}
	return errors.Join(problems...)
}

func checkSections(name, body string) []error {
	var problems []error
	up := strings.Index(body, "-- +goose Up")
	down := strings.Index(body, "-- +goose Down")
	switch {
	case up < 0:
		problems = append(problems, fmt.Errorf("%s: missing -- +goose Up", name))
	case down < 0:
		problems = append(problems, fmt.Errorf("%s: missing -- +goose Down", name))
	case down < up:
		problems = append(problems, fmt.Errorf("%s: Down section comes before Up", name))
	}

	depth := 0
	for _, line := range strings.Split(body, "\n") {
		switch strings.TrimSpace(line) {
		case "-- +goose StatementBegin":
			depth++
			if depth > 1 {
				problems = append(problems, fmt.Errorf("%s: nested StatementBegin", name))
			}
		case "-- +goose StatementEnd":
			depth--
			if depth < 0 {
				problems = append(problems, fmt.Errorf("%s: StatementEnd without StatementBegin", name))
				depth = 0
			}
		}
	}
	if depth != 0 {
		problems = append(problems, fmt.Errorf("%s: unterminated StatementBegin", name))
	}
	return problems
}
