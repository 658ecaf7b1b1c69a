// Package sanitize cleans HTML extracted from external newsletter posts and
// wraps it in the wiki's attribution block before it is stored as page body.
package sanitize

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	scriptRe  = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	styleRe   = regexp.MustCompile(`(?is)<style\b.*?</style>`)
	imgRe     = regexp.MustCompile(`(?i)<img[^>]*>`)
	figureRe  = regexp.MustCompile(`(?is)<figure[^>]*>.*?</figure>`)
	pictureRe = regexp.MustCompile(`(?is)<picture[^>]*>.*?</picture>`)
	classRe   = regexp.MustCompile(`(?i)\s?class="[^"]*"`)
	idRe      = regexp.MustCompile(`(?i)\s?id="[^"]*"`)
)

// Options controls how aggressively Sanitize strips the source markup.
// The import pipeline runs in two modes: the AMA feed import forbids carrying
// over source images, while the content-preserving mode keeps images and only
// drops scripts, styles and inline class/id attributes.
type Options struct {
	StripImages bool
}

// Sanitizer produces safe page bodies from raw external HTML.
type Sanitizer struct {
	opts Options

	// sourceName is the display name used in the attribution block,
	// e.g. "The Pixels Post".
	sourceName string
	sourceHome string
}

// New creates a Sanitizer for the given source identity and stripping options.
func New(sourceName, sourceHome string, opts Options) *Sanitizer {
	return &Sanitizer{opts: opts, sourceName: sourceName, sourceHome: sourceHome}
}

// Sanitize strips executable and (optionally) image-bearing markup from
// rawHTML and wraps the remainder in the fixed attribution template.
// An empty body yields a minimal fallback body pointing at the original URL,
// so a failed extraction still produces a usable page.
func (s *Sanitizer) Sanitize(rawHTML, sourceURL string) string {
	body := s.strip(rawHTML)
	if strings.TrimSpace(body) == "" {
		body = s.fallbackBody(sourceURL)
	}
	return s.wrap(body, sourceURL)
}

func (s *Sanitizer) strip(raw string) string {
	cleaned := scriptRe.ReplaceAllString(raw, "")
	cleaned = styleRe.ReplaceAllString(cleaned, "")

	if s.opts.StripImages {
		cleaned = imgRe.ReplaceAllString(cleaned, "")
		cleaned = figureRe.ReplaceAllString(cleaned, "")
		cleaned = pictureRe.ReplaceAllString(cleaned, "")
		return cleaned
	}

	// Content-preserving mode keeps images but drops the source site's
	// styling hooks so the wiki theme applies.
	cleaned = classRe.ReplaceAllString(cleaned, "")
	cleaned = idRe.ReplaceAllString(cleaned, "")
	return cleaned
}

func (s *Sanitizer) fallbackBody(sourceURL string) string {
	return fmt.Sprintf(
		`<p>This post was imported from %s.</p>
<p><strong>Read the full post:</strong> <a href=%q target="_blank" rel="noopener noreferrer">%s</a></p>`,
		s.sourceName, sourceURL, sourceURL)
}

func (s *Sanitizer) wrap(body, sourceURL string) string {
	return fmt.Sprintf(`<div class="imported-content">
  <div class="imported-source">
    <p><strong>Originally Published On:</strong>
      <a href=%q target="_blank" rel="noopener noreferrer">%s</a></p>
    <p><a href=%q target="_blank" rel="noopener noreferrer">Read the original article &rarr;</a></p>
  </div>

  <div class="imported-body">
%s
  </div>

  <div class="imported-footer">
    <p>This post was automatically imported from
      <a href=%q target="_blank" rel="noopener noreferrer">%s</a>.
      All credit goes to the original authors.</p>
  </div>
</div>`,
		s.sourceHome, s.sourceName, sourceURL, body, s.sourceHome, s.sourceName)
}
