package lexicon

// seedEntries is the verified base dictionary. Tulu is written in Roman
// transliteration as commonly used by Tulu speakers online. Entries are
// grouped by category for readability; the map built in [New] is flat.
var seedEntries = []Entry{
	// Greetings.
	{English: "hello", Tulu: "namaskara", Category: CategoryGreetings},
	{English: "welcome", Tulu: "swagatha", Category: CategoryGreetings},
	{English: "how are you", Tulu: "encha ullar", Category: CategoryGreetings},
	{English: "i am fine", Tulu: "yaan edde ulle", Category: CategoryGreetings},
	{English: "thank you", Tulu: "solmelu", Category: CategoryGreetings},
	{English: "good", Tulu: "edde", Category: CategoryGreetings},
	{English: "yes", Tulu: "andh", Category: CategoryGreetings},
	{English: "no", Tulu: "ijji", Category: CategoryGreetings},

	// Numbers.
	{English: "one", Tulu: "onji", Category: CategoryNumbers},
	{English: "two", Tulu: "raddu", Category: CategoryNumbers},
	{English: "three", Tulu: "muji", Category: CategoryNumbers},
	{English: "four", Tulu: "nalu", Category: CategoryNumbers},
	{English: "five", Tulu: "ainu", Category: CategoryNumbers},
	{English: "six", Tulu: "aji", Category: CategoryNumbers},
	{English: "seven", Tulu: "elu", Category: CategoryNumbers},
	{English: "eight", Tulu: "enma", Category: CategoryNumbers},
	{English: "nine", Tulu: "ormba", Category: CategoryNumbers},
	{English: "ten", Tulu: "pattu", Category: CategoryNumbers},

	// Family. Note appe/amme are deliberately the reverse of Kannada.
	{English: "mother", Tulu: "appe", Category: CategoryFamily},
	{English: "father", Tulu: "amme", Category: CategoryFamily},
	{English: "elder sister", Tulu: "akka", Category: CategoryFamily},
	{English: "elder brother", Tulu: "anne", Category: CategoryFamily},
	{English: "grandfather", Tulu: "ajje", Category: CategoryFamily},
	{English: "grandmother", Tulu: "ajji", Category: CategoryFamily},
	{English: "children", Tulu: "jokulu", Category: CategoryFamily},
	{English: "uncle", Tulu: "mama", Category: CategoryFamily},

	// Colors.
	{English: "white", Tulu: "boldu", Category: CategoryColors},
	{English: "black", Tulu: "kappu", Category: CategoryColors},
	{English: "red", Tulu: "kempu", Category: CategoryColors},
	{English: "green", Tulu: "pacche", Category: CategoryColors},
	{English: "yellow", Tulu: "manjal", Category: CategoryColors},
	{English: "blue", Tulu: "neeli", Category: CategoryColors},

	// Common words.
	{English: "water", Tulu: "neer", Category: CategoryCommon},
	{English: "milk", Tulu: "per", Category: CategoryCommon},
	{English: "rice", Tulu: "nuppu", Category: CategoryCommon},
	{English: "fish", Tulu: "meen", Category: CategoryCommon},
	{English: "salt", Tulu: "uppu", Category: CategoryCommon},
	{English: "tea", Tulu: "chaa", Category: CategoryCommon},
	{English: "food", Tulu: "vanas", Category: CategoryCommon},
	{English: "money", Tulu: "kaasu", Category: CategoryCommon},

	// Places and things.
	{English: "house", Tulu: "illu", Category: CategoryPlacesThings},
	{English: "village", Tulu: "ooru", Category: CategoryPlacesThings},
	{English: "market", Tulu: "santhe", Category: CategoryPlacesThings},
	{English: "tree", Tulu: "mara", Category: CategoryPlacesThings},
	{English: "road", Tulu: "saadi", Category: CategoryPlacesThings},
	{English: "temple", Tulu: "devasthana", Category: CategoryPlacesThings},

	// Actions.
	{English: "come", Tulu: "bala", Category: CategoryActions},
	{English: "go", Tulu: "po", Category: CategoryActions},
	{English: "sit", Tulu: "kulla", Category: CategoryActions},
	{English: "eat", Tulu: "tinla", Category: CategoryActions},
	{English: "drink", Tulu: "parla", Category: CategoryActions},
	{English: "sleep", Tulu: "jetla", Category: CategoryActions},
	{English: "give", Tulu: "korla", Category: CategoryActions},

	// General.
	{English: "what", Tulu: "dada", Category: CategoryGeneral},
	{English: "why", Tulu: "daye", Category: CategoryGeneral},
	{English: "where", Tulu: "olpa", Category: CategoryGeneral},
	{English: "when", Tulu: "yepa", Category: CategoryGeneral},
	{English: "name", Tulu: "pudar", Category: CategoryGeneral},
	{English: "love", Tulu: "mokhe", Category: CategoryGeneral},
	{English: "small", Tulu: "elya", Category: CategoryGeneral},
	{English: "big", Tulu: "mallha", Category: CategoryGeneral},
}
