package projects

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"buidl-explorer-go/pkg/models"
)

func TestDisplayFallbacks(t *testing.T) {
	empty := models.ProjectRecord{ID: "1"}
	assert.Equal(t, "Unnamed Project", DisplayName(empty))
	assert.Equal(t, "N/A", Organization(empty))
	assert.Equal(t, "", ProfileURL(empty))

	blank := models.ProjectRecord{ID: "2", DisplayName: strPtr("\x00\x1f"), Organization: strPtr("")}
	assert.Equal(t, "Unnamed Project", DisplayName(blank))
	assert.Equal(t, "N/A", Organization(blank))

	full := models.ProjectRecord{
		ID:           "3",
		DisplayName:  strPtr("Zk\u0085 Bridge"),
		Organization: strPtr("Org\tOne"),
		ProfileURL:   strPtr(" https://dorahacks.io/buidl/3 "),
	}
	assert.Equal(t, "Zk Bridge", DisplayName(full))
	assert.Equal(t, "OrgOne", Organization(full))
	assert.Equal(t, "https://dorahacks.io/buidl/3", ProfileURL(full))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "日本語...", Truncate("日本語テキスト", 6))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
}

func TestFormatTableOutput(t *testing.T) {
	assert.Equal(t, "No projects found.\n", FormatTableOutput(nil))

	out := FormatTableOutput([]models.ProjectRecord{
		{ID: "11", DisplayName: strPtr("Alpha"), Organization: strPtr("Acme")},
		{ID: "12"},
	})
	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "Unnamed Project")
	assert.Contains(t, out, "Total: 2 project(s)")
}

func TestFormatDetails(t *testing.T) {
	out := FormatDetails(models.ProjectRecord{ID: "5", DisplayName: strPtr("Five")})
	assert.Contains(t, out, "ID:      5")
	assert.Contains(t, out, "Name:    Five")
	assert.Contains(t, out, "Org:     N/A")
	assert.Contains(t, out, "Profile: (none)")
}

func TestFormatSearchSummary(t *testing.T) {
	assert.Equal(t, "3 project(s)", FormatSearchSummary(3, 3, ""))
	assert.Equal(t, `1 of 3 project(s) match "x"`, FormatSearchSummary(1, 3, "x"))
}

func TestFormatErrorMessage(t *testing.T) {
	assert.Equal(t, "❌ Error: boom\n", FormatErrorMessage(errors.New("boom")))
}
