package fs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verdantpress/verdant/pkg/core"
)

// frontmatter is the YAML header persisted at the top of every essay
// file. The HTML body follows the closing delimiter.
type frontmatter struct {
	ID                 string    `yaml:"id"`
	Title              string    `yaml:"title"`
	Subtitle           string    `yaml:"subtitle,omitempty"`
	Author             string    `yaml:"author"`
	CoverImage         string    `yaml:"cover_image,omitempty"`
	Status             string    `yaml:"status"`
	Version            int       `yaml:"version"`
	ReadingTimeMinutes int       `yaml:"reading_time_minutes"`
	ContentJSON        string    `yaml:"content_json,omitempty"`
	CreatedAt          time.Time `yaml:"created_at"`
	UpdatedAt          time.Time `yaml:"updated_at"`
	UpdatedBy          string    `yaml:"updated_by,omitempty"`
}

var delimiter = []byte("---\n")

// serialize converts an essay into a Markdown file with YAML
// frontmatter. Section and slug are not written; they are derived from
// the file's location in the vault.
func serialize(essay core.Essay) ([]byte, error) {
	fm := frontmatter{
		ID:                 essay.ID,
		Title:              essay.Title,
		Subtitle:           essay.Subtitle,
		Author:             essay.AuthorName,
		CoverImage:         essay.CoverImageURL,
		Status:             string(essay.Status),
		Version:            essay.Version,
		ReadingTimeMinutes: essay.ReadingTimeMinutes,
		ContentJSON:        essay.ContentJSON,
		CreatedAt:          essay.CreatedAt,
		UpdatedAt:          essay.UpdatedAt,
		UpdatedBy:          essay.UpdatedBy,
	}

	meta, err := yaml.Marshal(&fm)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(delimiter)
	buf.Write(meta)
	buf.Write(delimiter)
	buf.WriteString(essay.ContentHTML)
	if essay.ContentHTML != "" && !bytes.HasSuffix([]byte(essay.ContentHTML), []byte("\n")) {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// parse reads an essay file. Section and slug are filled in by the
// caller from the file path.
func parse(r io.Reader) (core.Essay, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return core.Essay{}, err
	}

	if !bytes.HasPrefix(data, delimiter) {
		return core.Essay{}, errors.New("missing frontmatter delimiter")
	}

	rest := data[len(delimiter):]
	parts := bytes.SplitN(rest, []byte("\n---"), 2)
	if len(parts) != 2 {
		return core.Essay{}, errors.New("frontmatter started but no closing delimiter found")
	}

	var fm frontmatter
	if err := yaml.Unmarshal(parts[0], &fm); err != nil {
		return core.Essay{}, fmt.Errorf("invalid frontmatter: %w", err)
	}

	body := bytes.TrimPrefix(parts[1], []byte("\n"))
	body = bytes.TrimSuffix(body, []byte("\n"))

	return core.Essay{
		ID:                 fm.ID,
		Title:              fm.Title,
		Subtitle:           fm.Subtitle,
		AuthorName:         fm.Author,
		CoverImageURL:      fm.CoverImage,
		Status:             core.Status(fm.Status),
		Version:            fm.Version,
		ReadingTimeMinutes: fm.ReadingTimeMinutes,
		ContentHTML:        string(body),
		ContentJSON:        fm.ContentJSON,
		CreatedAt:          fm.CreatedAt,
		UpdatedAt:          fm.UpdatedAt,
		UpdatedBy:          fm.UpdatedBy,
	}, nil
}
