package chat

import (
	"fmt"
	"sort"
	"strings"
)

// quickCommands map menu numbers to canned questions. "10" is skipped
// so the single digit shortcuts stay unambiguous next to "1".
var quickCommands = map[string]string{
	"1":  "dün en çok okunan 10 haber",
	"2":  "bugün kaç kullanıcı geldi",
	"3":  "dün trafik kaynakları",
	"4":  "dün kategori performansı",
	"5":  "dün editör performansı",
	"6":  "dün cihaz dağılımı",
	"7":  "dün şehir dağılımı",
	"8":  "bugün saatlik trafik",
	"9":  "son 7 gün günlük trend",
	"11": "dün genel özet",
	"12": "dün yazar performansı",
	"13": "dün haber tipi dağılımı",
	"14": "dün etiket analizi",
	"15": "dün tarayıcı dağılımı",
	"16": "dün işletim sistemi dağılımı",
	"17": "dün giriş sayfaları",
	"18": "dün yeni ve geri dönen kullanıcılar",
	"19": "şu an kaç aktif kullanıcı var",
}

var exitWords = map[string]bool{
	"cikis": true,
	"exit":  true,
	"quit":  true,
	"q":     true,
}

var helpWords = map[string]bool{
	"yardim": true,
	"help":   true,
	"?":      true,
	"menu":   true,
	"0":      true,
}

func helpText(brandName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s rapor asistani\n\n", brandName)
	b.WriteString("Sorunuzu Turkce yazabilirsiniz, ornegin:\n")
	b.WriteString("  - dun en cok okunan haberler\n")
	b.WriteString("  - gecen hafta spor kategorisi kac goruntulendi\n")
	b.WriteString("  - editor cem koca performansi\n")
	b.WriteString("  - mobil vs desktop karsilastir\n\n")
	b.WriteString("Hizli komutlar:\n")

	keys := make([]string, 0, len(quickCommands))
	for k := range quickCommands {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		fmt.Fprintf(&b, "  %2s) %s\n", k, quickCommands[k])
	}
	b.WriteString("\nCikmak icin: cikis")
	return b.String()
}

// capabilityText is the final fallback when nothing understood the
// question.
func capabilityText() string {
	return strings.Join([]string{
		"Bu soruyu anlayamadim. Sunlari sorabilirsiniz:",
		"  - okunma, kullanici, oturum gibi metrikler",
		"  - kategori, editor, yazar, haber tipi kirilimlari",
		"  - dun, gecen hafta, son 30 gun gibi donemler",
		"Menu icin: yardim",
	}, "\n")
}
