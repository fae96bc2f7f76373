package menu

// Builtin returns the built-in sample catalog used when no catalog file is
// configured. Keyword lists deliberately include quantity-fused surface
// forms ("비빔밥하나") because Korean speech recognition frequently glues the
// quantity onto the item name.
func Builtin() *Catalog {
	c, err := NewCatalog(builtinEntries())
	if err != nil {
		// The builtin data is compile-time constant; a validation failure
		// here is a programming error.
		panic("menu: builtin catalog invalid: " + err.Error())
	}
	return c
}

func builtinEntries() []Entry {
	return []Entry{
		{
			ID: "bibimbap",
			Name: map[Lang]string{
				Korean: "비빔밥", English: "Bibimbap", Chinese: "韩式拌饭", Japanese: "ビビンバ",
			},
			Description: map[Lang]string{
				Korean: "신선한 나물과 고추장이 어우러진 비빔밥",
				English: "Rice mixed with fresh vegetables and gochujang",
			},
			Keywords: map[Lang][]string{
				Korean:   {"비빔밥", "비빔밥하나", "비빔밥 하나", "비빔밥한개"},
				English:  {"bibimbap", "mixed rice", "korean bowl"},
				Chinese:  {"拌饭", "韩式拌饭", "石锅拌饭"},
				Japanese: {"ビビンバ", "ビビンパ", "ミックスライス"},
			},
			Price:     12000,
			Category:  "main",
			Available: true,
			Popular:   true,
		},
		{
			ID: "kimchi-jjigae",
			Name: map[Lang]string{
				Korean: "김치찌개", English: "Kimchi Stew", Chinese: "泡菜锅", Japanese: "キムチチゲ",
			},
			Description: map[Lang]string{
				Korean: "얼큰한 김치찌개",
			},
			Keywords: map[Lang][]string{
				Korean:   {"김치찌개", "김치찌개하나", "김치찌개 하나", "김치찌개한개"},
				English:  {"kimchi stew", "kimchi jjigae", "fermented cabbage stew"},
				Chinese:  {"泡菜锅", "辛奇汤", "泡菜汤"},
				Japanese: {"キムチチゲ", "キムチ鍋", "キムチスープ"},
			},
			Price:     10000,
			Category:  "stew",
			Available: true,
			Popular:   true,
		},
		{
			ID: "doenjang-jjigae",
			Name: map[Lang]string{
				Korean: "된장찌개", English: "Soybean Paste Stew", Chinese: "大酱汤", Japanese: "テンジャンチゲ",
			},
			Keywords: map[Lang][]string{
				Korean:   {"된장찌개", "된장찌개하나", "된장찌개 하나"},
				English:  {"soybean paste stew", "doenjang jjigae", "miso stew"},
				Chinese:  {"大酱汤", "韩式大酱汤"},
				Japanese: {"テンジャンチゲ", "味噌チゲ"},
			},
			Price:     8000,
			Category:  "stew",
			Available: true,
		},
		{
			ID: "bulgogi",
			Name: map[Lang]string{
				Korean: "불고기", English: "Bulgogi", Chinese: "烤牛肉", Japanese: "プルコギ",
			},
			Description: map[Lang]string{
				Korean: "달콤한 양념에 재운 불고기",
			},
			Keywords: map[Lang][]string{
				Korean:   {"불고기", "불고기하나", "불고기 하나", "불고기한개"},
				English:  {"bulgogi", "korean bbq", "marinated beef"},
				Chinese:  {"烤牛肉", "韩式烤肉", "牛肉烧烤"},
				Japanese: {"プルコギ", "コリアンバーベキュー", "焼肉"},
			},
			Price:     15000,
			Category:  "main",
			Available: true,
			Popular:   true,
		},
		{
			ID: "rice",
			Name: map[Lang]string{
				Korean: "공기밥", English: "Rice", Chinese: "米饭", Japanese: "ご飯",
			},
			Keywords: map[Lang][]string{
				Korean:   {"공기밥", "밥", "공기밥하나", "공기밥 하나", "밥하나", "밥 하나"},
				English:  {"rice", "steamed rice", "bowl of rice"},
				Chinese:  {"米饭", "白米饭", "蒸饭"},
				Japanese: {"ご飯", "ライス", "白米"},
			},
			Price:     2000,
			Category:  "side",
			Available: true,
		},
		{
			ID: "cola",
			Name: map[Lang]string{
				Korean: "콜라", English: "Cola", Chinese: "可乐", Japanese: "コーラ",
			},
			Keywords: map[Lang][]string{
				Korean:   {"콜라", "콜라하나", "콜라 하나"},
				English:  {"cola", "coke"},
				Chinese:  {"可乐"},
				Japanese: {"コーラ"},
			},
			Price:     2500,
			Category:  "drink",
			Available: true,
		},
	}
}
