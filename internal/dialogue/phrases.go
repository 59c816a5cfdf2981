package dialogue

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
)

// Phrase tables. Responses pick from these at random so repeated commands
// do not sound canned; tests pin the choice through pickFn.
var (
	greetings = []string{
		"Hi! Great to have you in the kitchen!",
		"Welcome back to your recipe book!",
		"Hello! Glad you're cooking today.",
		"Good to see you here! Ready to cook?",
	}

	confirmations = []string{
		"Perfect!",
		"Excellent!",
		"Great!",
		"Wonderful!",
	}

	anythingElse = []string{
		"Is there anything else I can help you with in the kitchen?",
		"Do you need anything else?",
		"What else can I do for you?",
		"Can I help you with another recipe?",
	}

	whatToDo = []string{
		"What would you like to do in the kitchen today?",
		"How can I help you with your recipes?",
		"What do you want to cook today?",
		"How can I help with your recipe book?",
	}

	optionsMenu = []string{
		"I can help you manage your personal recipe book. You can add new recipes, list your recipes, start preparing one, mark a preparation as completed, or check what is in preparation.",
		"I have a few options for you: add recipes to your collection, list all your recipes, prepare a recipe, complete a preparation, or review your active preparations.",
	}

	goodbyes = []string{
		"See you later! Enjoy your cooking.",
		"See you soon! I hope you enjoy your recipes.",
		"Goodbye! It was a pleasure helping with your recipe book.",
		"Until next time! Happy cooking.",
	}

	recoveries = []string{
		"Oops, something didn't go as expected. Shall we try again?",
		"Sorry, I hit a small problem. Want to try once more?",
		"Apologies, there was a hiccup. What did you want to do?",
	}
)

var (
	pickMu sync.Mutex
	// pickFn selects one phrase from a table; swapped out in tests for a
	// deterministic choice.
	pickFn = func(table []string) string {
		return table[rand.Intn(len(table))]
	}
)

func pick(table []string) string {
	pickMu.Lock()
	defer pickMu.Unlock()
	return pickFn(table)
}

// welcomeMessage builds the launch greeting from the user's counts. Frequent
// users with content get a status recap instead of the first-time pitch.
func welcomeMessage(totalRecipes, activePreps int, frequentUser bool) string {
	if frequentUser && totalRecipes > 0 {
		status := fmt.Sprintf("I see you have %d recipes in your recipe book", totalRecipes)
		if activePreps > 0 {
			status += fmt.Sprintf(" and %d active preparations", activePreps)
		}
		return "Hello again! Good to see you in the kitchen! " + status + ". " + pick(whatToDo)
	}
	return pick(greetings) + " I'm your recipe assistant. I can keep track of your recipes, who is preparing them, and what you've completed. To get started, just say: add a recipe. " + pick(whatToDo)
}

// joinQuoted renders a spoken list: 'A', 'B', 'C'.
func joinQuoted(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return strings.Join(quoted, ", ")
}
