package browser

import (
	"context"
	"strings"
	"testing"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roelfdiedericks/trailmcp/internal/trail"
)

// shadowFixture mirrors a quiz component: the radio lives in a shadow root
// and shares its id with an element in the light DOM.
const shadowFixture = `<html><head><title>Shadow</title></head><body>
<th-tds-quiz id="host"><button type="submit">Light</button></th-tds-quiz>
<div id="choice">outer</div>
</body></html>`

const jsAttachShadow = `() => {
	window.clicked = [];
	const root = document.getElementById('host').attachShadow({mode: 'open'});
	root.innerHTML = '<div class="q"><input type="radio" id="choice"><span class="option-text">inner</span></div>';
	root.getElementById('choice').addEventListener('click', () => window.clicked.push('inner'));
	document.querySelector('div#choice').addEventListener('click', () => window.clicked.push('outer'));
}`

// headlessPage loads shadowFixture in a throwaway headless browser. The test
// is skipped when no local browser is installed.
func headlessPage(t *testing.T) *rodPage {
	t.Helper()
	bin, ok := launcher.LookPath()
	if !ok {
		t.Skip("no local chromium-based browser")
	}

	l := launcher.New().Bin(bin).Headless(true).Set("no-sandbox")
	u, err := l.Launch()
	require.NoError(t, err)
	t.Cleanup(l.Cleanup)

	b := rod.New().ControlURL(u)
	require.NoError(t, b.Connect())
	t.Cleanup(func() { _ = b.Close() })

	pg, err := b.Page(proto.TargetCreateTarget{})
	require.NoError(t, err)
	require.NoError(t, pg.SetDocumentContent(shadowFixture))
	_, err = pg.Eval(jsAttachShadow)
	require.NoError(t, err)

	return newPage(pg, &BrowserConfig{})
}

func TestScriptsShadowDOM(t *testing.T) {
	p := headlessPage(t)
	ctx := context.Background()

	t.Run("deep selectors", func(t *testing.T) {
		assert.True(t, p.Exists(ctx, "th-tds-quiz >>> input#choice"))
		assert.True(t, p.Exists(ctx, "input#choice"))
		assert.True(t, p.Exists(ctx, "th-tds-quiz >>> button[type='submit']"))
		assert.False(t, p.Exists(ctx, "th-tds-quiz >>> .missing"))
	})

	t.Run("flatten writes shadow content before light children", func(t *testing.T) {
		html, ok, err := p.HTML(ctx, "body")
		require.NoError(t, err)
		require.True(t, ok)
		inner := strings.Index(html, `<input type="radio" id="choice">`)
		light := strings.Index(html, `<button type="submit">Light</button>`)
		outer := strings.Index(html, `<div id="choice">outer</div>`)
		require.NotEqual(t, -1, inner)
		assert.Less(t, inner, light)
		assert.Less(t, light, outer)
	})

	t.Run("parsed option ids click the same elements", func(t *testing.T) {
		html, _, err := p.HTML(ctx, "body")
		require.NoError(t, err)

		site := trail.DefaultSite()
		site.QuestionSelectors = []string{".q"}
		site.OptionSelectors = []string{"input[type=radio]"}
		qs, err := trail.ParseQuiz(html, site)
		require.NoError(t, err)
		require.Len(t, qs.Questions, 1)
		require.Len(t, qs.Questions[0].Options, 1)
		require.Equal(t, "choice", qs.Questions[0].Options[0].ID)

		require.NoError(t, p.ClickByID(ctx, "choice"))
		require.NoError(t, p.ClickByID(ctx, "choice#2"))
		err = p.ClickByID(ctx, "choice#3")
		assert.ErrorIs(t, err, trail.ErrElementNotFound)

		res, err := p.page.Eval(`() => window.clicked.join(',')`)
		require.NoError(t, err)
		assert.Equal(t, "inner,outer", res.Value.Str())
	})

	t.Run("text reads through shadow roots", func(t *testing.T) {
		text, ok, err := p.Text(ctx, "th-tds-quiz")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Contains(t, text, "inner")
		assert.Contains(t, text, "Light")
	})
}
