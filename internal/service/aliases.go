package service

// DefaultAliases maps nicknames users type in chat to stored display names.
var DefaultAliases = map[string]string{
	"てーたむ":    "Jayson Tatum",
	"るか":      "Luka Dončić",
	"やにす":     "Giannis Antetokounmpo",
	"れぶろん":    "LeBron James",
	"らめろ":     "LaMelo Ball",
	"けんば":     "Kemba Walker",
	"かりー":     "Stephen Curry",
	"よきっち":    "Nikola Jokić",
	"ヘジテーション": "Jaylen Brown",
	"るい":      "Rui Hachimura",
	"ゆうた":     "Yuta Watanabe",
	"kp":      "Kristaps Porziņģis",
	"めろ":      "Carmelo Anthony",
	"ぺいとん":    "Payton Pritchard",
	"ぶっかー":    "Devin Booker",
	"ad":      "Anthony Davis",
}
