package featured

const recipeBase = "https://www.indiafoodnetwork.in/recipes/"

// Fallback 無法取得遠端資料時顯示的節慶清單
func Fallback() []Festival {
	return []Festival{
		{
			ID:          "onam",
			Name:        "Onam",
			Date:        "2025-09-05",
			Description: "Celebrate Kerala's harvest festival with traditional Onam Sadya recipes!",
			Tag:         festivalTags["onam"],
			Recipes: []Recipe{
				fallbackRecipe(1, "Onam Payasam", "Traditional Kerala rice pudding with jaggery and coconut milk", "45 mins", "onam-payasam", "Kerala Kitchen", "photo-1593560708920-61dd98c46a4e", "sweet", "traditional", "medium"),
				fallbackRecipe(2, "Kerala Sambar", "Tangy lentil curry with coconut and curry leaves", "35 mins", "kerala-sambar", "Traditional Recipe", "photo-1589302168068-964664d93dc0", "traditional", "spicy", "easy"),
				fallbackRecipe(3, "Avial", "Mixed vegetables cooked in coconut and yogurt", "", "avial", "", "photo-1565299624946-b28f40a0ca4b", "healthy", "traditional"),
				fallbackRecipe(4, "Banana Chips", "Crispy Kerala style banana chips", "25 mins", "banana-chips", "Snack Master", "photo-1571091718767-18b5b1457add", "snack", "easy"),
				fallbackRecipe(5, "Coconut Barfi", "Sweet coconut fudge perfect for Onam celebrations", "", "coconut-barfi", "", "photo-1578662996442-48f60103fc96", "sweet"),
			},
		},
		{
			ID:          "ganesh-chaturthi",
			Name:        "Ganesh Chaturthi",
			Date:        "2025-08-29",
			Description: "Celebrate Lord Ganesha with traditional recipes!",
			Tag:         festivalTags["ganesh-chaturthi"],
			Recipes: []Recipe{
				fallbackRecipe(1, "Modak", "Traditional steamed dumplings filled with jaggery and coconut", "45 mins", "modak", "Festival Chef", "photo-1578662996442-48f60103fc96", "sweet", "traditional", "medium"),
				fallbackRecipe(2, "Coconut Laddoo", "Sweet coconut balls perfect for prasad", "20 mins", "coconut-laddoo", "Sweet Master", "photo-1606313564200-e75d5e30476c", "sweet", "easy"),
			},
		},
		{
			ID:          "navratri",
			Name:        "Navratri",
			Date:        "2025-09-22",
			Description: "Nine nights of celebrating Goddess Durga with fasting recipes",
			Tag:         festivalTags["navratri"],
			Recipes: []Recipe{
				fallbackRecipe(1, "Sabudana Vada", "Crispy tapioca fritters perfect for Navratri fasting", "25 mins", "sabudana-vada", "Fasting Expert", "photo-1565299624946-b28f40a0ca4b", "fasting", "traditional", "medium"),
				fallbackRecipe(2, "Kuttu Ki Puri", "Buckwheat flour bread for Navratri vrat", "", "kuttu-puri", "", "photo-1589302168068-964664d93dc0", "fasting"),
				fallbackRecipe(3, "Singhare Ka Halwa", "Water chestnut flour halwa for fasting", "30 mins", "singhare-halwa", "Fasting Sweets", "photo-1571091718767-18b5b1457add", "sweet", "fasting", "easy"),
			},
		},
	}
}

func fallbackRecipe(id int, name, description, cookTime, slug, author, photo string, tags ...string) Recipe {
	return Recipe{
		ID:          id,
		Name:        name,
		Description: description,
		Image:       "https://images.unsplash.com/" + photo + "?w=400&h=300&fit=crop",
		CookTime:    cookTime,
		Difficulty:  DifficultyFromTags(tags),
		Type:        TypeFromTags(tags),
		RecipeURL:   recipeBase + slug,
		Author:      author,
		Tags:        tags,
	}
}
