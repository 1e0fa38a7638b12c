package catalog

import (
	"fmt"
	"regexp"
	"strconv"
)

// Voice selects one of the two narrations every book ships with.
type Voice string

const (
	VoiceMale   Voice = "male"
	VoiceFemale Voice = "female"
)

// Book is one catalog entry. Duration keeps the display string ("N сағат M мин");
// use ParseDuration for the numeric total.
type Book struct {
	ID           int              `json:"id"`
	Title        string           `json:"title"`
	Author       string           `json:"author"`
	CoverImage   string           `json:"coverImage"`
	Category     string           `json:"category"`
	Genre        string           `json:"genre"`
	Chapters     int              `json:"chapters"`
	Duration     string           `json:"duration"`
	Year         string           `json:"year"`
	Description  string           `json:"description"`
	AudioSources map[Voice]string `json:"audioSources"`
}

// Categories lists the catalog filters, first entry meaning "all".
var Categories = []string{
	"Барлық кітаптар",
	"Классикалық әдебиет",
	"Тарихи романдар",
}

var books = []Book{
	{
		ID:         1,
		Title:      "Абай жолы",
		Author:     "Мұхтар Әуезов",
		CoverImage: "https://abai.kz/content/uploads/2021/08/23159658a5a605d4153cf6c0279e28ac.jpeg",
		Category:   "Классикалық әдебиет",
		Genre:      "Роман-эпопея",
		Chapters:   4,
		Duration:   "12 сағат 28 мин",
		Year:       "1942",
		Description: "Мұхтар Әуезовтің ұлы эпопеясы – қазақ интеллигенциясының қалыптасуын, " +
			"Абай Құнанбаевтың өмірі мен идеясын кең көлемде бейнелейді.",
		AudioSources: map[Voice]string{
			VoiceMale:   "https://audioqor.fra1.cdn.digitaloceanspaces.com/aqzhaik_1.mp3",
			VoiceFemale: "https://audioqor.fra1.cdn.digitaloceanspaces.com/aqzhaik_1.mp3",
		},
	},
	{
		ID:         2,
		Title:      "Қан мен тер",
		Author:     "Әбдіжәміл Нұрпейісов",
		CoverImage: "https://cdn.kitap.kz/storage/book/dfa5bc4cbe6133665c3325a373d6ff36.jpg",
		Category:   "Классикалық әдебиет",
		Genre:      "Социалистік-реалистік роман",
		Chapters:   3,
		Duration:   "4 сағат 15 мин",
		Year:       "1961",
		Description: "Әбдіжәміл Нұрпейісов қазақ даласының әлеуметтік өзгерістерін, " +
			"еңбекшілердің тағдырын трилогиялық форматта суреттейді.",
		AudioSources: map[Voice]string{
			VoiceMale:   "https://audioqor.fra1.cdn.digitaloceanspaces.com/aqzhaik_1.mp3",
			VoiceFemale: "https://audioqor.fra1.cdn.digitaloceanspaces.com/aqzhaik_1.mp3",
		},
	},
	{
		ID:         3,
		Title:      "Ай мен Айша",
		Author:     "Шерхан Мұртаза",
		CoverImage: "https://cdn.kitap.kz/storage/book/938bd333c1eb706801a0a46b7260252d.jpg",
		Category:   "Классикалық әдебиет",
		Genre:      "Роман-диалогия",
		Chapters:   2,
		Duration:   "3 сағат 45 мин",
		Year:       "1968",
		Description: "Шерхан Мұртазаның бала мен ана арасындағы мөндетті, сырлы қарым-қатынасын " +
			"шынайы диалог түрінде жеткізетін романы.",
		AudioSources: map[Voice]string{
			VoiceMale:   "https://audioqor.fra1.cdn.digitaloceanspaces.com/aqzhaik_1.mp3",
			VoiceFemale: "https://audioqor.fra1.cdn.digitaloceanspaces.com/aqzhaik_1.mp3",
		},
	},
	{
		ID:         4,
		Title:      "Ақ Жайық",
		Author:     "Хамза Есенжанов",
		CoverImage: "https://egemen.kz/wp-content/uploads/2015/08/%D1%84%D0%BE%D1%82%D0%BE-1-126.jpg",
		Category:   "Тарихи романдар",
		Genre:      "Тарихи роман",
		Chapters:   3,
		Duration:   "1 сағат 20 мин",
		Year:       "1957",
		Description: "20 ғасырдың басындағы Ақ Жайық өңіріндегі халықтың азапты тағдырын және " +
			"азаттық үшін күресті суреттейтін тарихи роман.",
		AudioSources: map[Voice]string{
			VoiceMale:   "https://audioqor.fra1.cdn.digitaloceanspaces.com/aqzhaik_1.mp3",
			VoiceFemale: "https://audioqor.fra1.cdn.digitaloceanspaces.com/aqzhaik_1.mp3",
		},
	},
	{
		ID:         5,
		Title:      "Үркер",
		Author:     "Әбіш Кекілбаев",
		CoverImage: "https://cdn.kitap.kz/storage/book/1324630bdaebd3f7a9cf9008a89f574d.jpg",
		Category:   "Тарихи романдар",
		Genre:      "Тарихи роман",
		Chapters:   4,
		Duration:   "2 сағат 35 мин",
		Year:       "1981",
		Description: "Әбіш Кекілбаевтың кіші жүз руларының Ресей империясына қосылу кезеңін " +
			"нақты тарихи деректерге сүйеніп суреттейтін көлемді шығарма.",
		AudioSources: map[Voice]string{
			VoiceMale:   "https://audioqor.fra1.cdn.digitaloceanspaces.com/aqzhaik_1.mp3",
			VoiceFemale: "https://audioqor.fra1.cdn.digitaloceanspaces.com/aqzhaik_1.mp3",
		},
	},
}

// Books returns a copy of the full catalog.
func Books() []Book {
	out := make([]Book, len(books))
	copy(out, books)
	return out
}

// BookByID returns the book with the given id.
func BookByID(id int) (Book, error) {
	for _, b := range books {
		if b.ID == id {
			return b, nil
		}
	}
	return Book{}, fmt.Errorf("кітап табылмады (id=%d)", id)
}

// BookAudio returns the narration URL for the given book and voice.
func BookAudio(id int, voice Voice) (string, error) {
	b, err := BookByID(id)
	if err != nil {
		return "", err
	}
	url, ok := b.AudioSources[voice]
	if !ok {
		return "", fmt.Errorf("дауыс табылмады (voice=%s)", voice)
	}
	return url, nil
}

var (
	hoursRe   = regexp.MustCompile(`(\d+)\s*сағат`)
	minutesRe = regexp.MustCompile(`(\d+)\s*мин`)
)

// ParseDuration converts a display duration like "12 сағат 28 мин" into total
// seconds. Missing tokens contribute zero; malformed input yields 0.
func ParseDuration(dur string) int {
	total := 0
	if m := hoursRe.FindStringSubmatch(dur); m != nil {
		h, _ := strconv.Atoi(m[1])
		total += h * 3600
	}
	if m := minutesRe.FindStringSubmatch(dur); m != nil {
		mins, _ := strconv.Atoi(m[1])
		total += mins * 60
	}
	return total
}
