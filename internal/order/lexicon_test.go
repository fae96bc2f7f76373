package order_test

import (
	"testing"

	"github.com/hanwoori/sorikiosk/internal/menu"
	"github.com/hanwoori/sorikiosk/internal/order"
)

func TestDefaultLexicons_CoverSupportedLanguages(t *testing.T) {
	t.Parallel()

	lx := order.DefaultLexicons()
	for _, lang := range menu.SupportedLangs {
		if len(lx[lang]) == 0 {
			t.Errorf("no quantity lexicon for %s", lang)
		}
	}
}

func TestParse_QuantityPerLanguage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		lang       menu.Lang
		transcript string
		id         string
		quantity   int
	}{
		{menu.Korean, "김치찌개 셋", "kimchi-jjigae", 3},
		{menu.Korean, "콜라 두개", "cola", 2},
		{menu.English, "three kimchi stew", "kimchi-jjigae", 3},
		{menu.Chinese, "两个泡菜锅", "kimchi-jjigae", 2},
		{menu.Japanese, "キムチチゲ 三つ", "kimchi-jjigae", 3},
		{menu.Japanese, "コーラ ふたつ", "cola", 2},
	}

	p := order.NewParser()
	cat := menu.Builtin()
	for _, tc := range cases {
		res, err := p.Parse(tc.transcript, tc.lang, cat)
		if err != nil {
			t.Fatalf("Parse(%q, %s): %v", tc.transcript, tc.lang, err)
		}
		if len(res.Candidates) != 1 {
			t.Fatalf("Parse(%q, %s): %d candidates, want 1", tc.transcript, tc.lang, len(res.Candidates))
		}
		c := res.Candidates[0]
		if c.Entry.ID != tc.id {
			t.Errorf("Parse(%q, %s): entry = %s, want %s", tc.transcript, tc.lang, c.Entry.ID, tc.id)
		}
		if c.Quantity != tc.quantity {
			t.Errorf("Parse(%q, %s): quantity = %d, want %d", tc.transcript, tc.lang, c.Quantity, tc.quantity)
		}
	}
}
