package dialogue

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/recipedeck/go-recipe-backend/internal/domain"
	"github.com/recipedeck/go-recipe-backend/internal/services"
)

// Recognized command names. The hosting platform resolves utterances to one
// of these; anything else is treated as a fallback.
const (
	IntentLaunch      = "launch"
	IntentAddRecipe   = "add_recipe"
	IntentListRecipes = "list_recipes"
	IntentNextPage    = "next_page"
	IntentExitList    = "exit_list"
	IntentSearch      = "search_recipe"
	IntentPrepare     = "prepare_recipe"
	IntentComplete    = "complete_recipe"
	IntentActive      = "active_preparations"
	IntentHistory     = "completed_history"
	IntentDelete      = "delete_recipe"
	IntentResetCache  = "reset_cache"
	IntentOptions     = "options"
	IntentHelp        = "help"
	IntentCancel      = "cancel"
	IntentStop        = "stop"
	IntentFallback    = "fallback"
	IntentAnswer      = "general_answer"
	IntentSessionEnd  = "session_ended"
)

// Turn is one inbound conversational turn: the recognized command plus any
// field values the platform extracted from the utterance.
type Turn struct {
	UserID    string            `json:"user_id"`
	SessionID string            `json:"session_id"`
	Intent    string            `json:"intent"`
	Slots     map[string]string `json:"slots"`
}

// Response is the spoken outcome of a turn.
type Response struct {
	Speak      string `json:"speak"`
	Reprompt   string `json:"reprompt"`
	EndSession bool   `json:"end_session"`
}

var (
	turnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialogue_turns_total",
			Help: "Total number of dialogue turns by intent.",
		},
		[]string{"intent"},
	)
	flowsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dialogue_slot_flows_active",
			Help: "Number of sessions currently inside a slot-filling flow.",
		},
	)
)

func init() {
	prometheus.MustRegister(turnsTotal, flowsActive)
}

// SnapshotStore extends the lifecycle store contract with the cache-reset
// reload used by the reset turn. *repo.UserDataStore satisfies it.
type SnapshotStore interface {
	services.UserDataStore
	// Reset drops every cached snapshot and reloads from persistence.
	Reset(ctx context.Context, userID string) (*domain.UserData, error)
}

// Tracker drives the turn-based dialogue: it decides whether a turn
// continues an in-progress slot-filling flow or is a fresh command, invokes
// the lifecycle services, and renders the spoken response.
//
// Session state is held per conversational session and discarded on flow
// completion, cancellation, or any unexpected error.
type Tracker struct {
	Recipes      *services.RecipeService
	Preparations *services.PreparationService
	Summaries    *services.SummaryService
	Store        SnapshotStore
	Sessions     *SessionStore
}

// NewTracker wires a Tracker over the given services and session store.
func NewTracker(rs *services.RecipeService, ps *services.PreparationService, ss *services.SummaryService, store SnapshotStore, sessions *SessionStore) *Tracker {
	return &Tracker{
		Recipes:      rs,
		Preparations: ps,
		Summaries:    ss,
		Store:        store,
		Sessions:     sessions,
	}
}

// HandleTurn processes one conversational turn. Business outcomes become
// specific spoken responses; unexpected failures are logged, clear the
// session state, and surface as a generic recovery response.
func (t *Tracker) HandleTurn(ctx context.Context, turn Turn) Response {
	tr := otel.Tracer("dialogue/Tracker")
	ctx, span := tr.Start(ctx, "HandleTurn",
		trace.WithAttributes(
			attribute.String("user.id", turn.UserID),
			attribute.String("dialogue.intent", turn.Intent),
		),
	)
	defer span.End()

	intent := strings.ToLower(strings.TrimSpace(turn.Intent))
	if intent == "" {
		intent = IntentFallback
	}
	turnsTotal.WithLabelValues(intent).Inc()
	defer func() { flowsActive.Set(float64(t.Sessions.ActiveFlows())) }()

	sess := t.Sessions.Get(turn.SessionID)

	resp, err := t.dispatch(ctx, turn, intent, sess)
	if err != nil {
		log.Error().Err(err).
			Str("user_id", turn.UserID).
			Str("intent", intent).
			Str("dialogue_state", sess.State.String()).
			Msg("dialogue turn failed")
		t.Sessions.Clear(turn.SessionID)
		return Response{
			Speak:    pick(recoveries),
			Reprompt: "How can I help you?",
		}
	}
	return resp
}

func (t *Tracker) dispatch(ctx context.Context, turn Turn, intent string, sess *Session) (Response, error) {
	if sess.InFlow() {
		switch intent {
		case IntentCancel, IntentStop, IntentSessionEnd:
			// Explicit abort discards staged slots with no persisted side effect.
		case IntentAddRecipe, IntentAnswer:
			return t.continueAdd(ctx, turn, sess)
		case IntentFallback:
			return t.flowFallback(ctx, turn, sess)
		default:
			// Misrecognized answers often arrive as another command carrying
			// the spoken value in a slot. A usable value continues the flow;
			// an unrelated command without one abandons it.
			if v := extractAnswer(turn); v != "" {
				return t.applyAnswer(ctx, turn, sess, v)
			}
			sess.reset()
		}
	}

	switch intent {
	case IntentLaunch:
		return t.handleLaunch(ctx, turn)
	case IntentAddRecipe:
		return t.continueAdd(ctx, turn, sess)
	case IntentAnswer:
		// A bare answer with no flow in progress has nothing to attach to.
		return t.handleFallback(turn, sess), nil
	case IntentListRecipes:
		return t.handleList(ctx, turn, sess)
	case IntentNextPage:
		return t.handleNextPage(turn, sess)
	case IntentExitList:
		sess.Listing = false
		sess.ListPage = 0
		sess.Filtered = nil
		return Response{
			Speak:    "Okay, I'm done showing recipes. " + pick(anythingElse),
			Reprompt: pick(whatToDo),
		}, nil
	case IntentSearch:
		return t.handleSearch(ctx, turn)
	case IntentPrepare:
		return t.handlePrepare(ctx, turn)
	case IntentComplete:
		return t.handleComplete(ctx, turn)
	case IntentActive:
		return t.handleActive(ctx, turn)
	case IntentHistory:
		return t.handleHistory(ctx, turn)
	case IntentDelete:
		return t.handleDelete(ctx, turn)
	case IntentResetCache:
		return t.handleReset(ctx, turn)
	case IntentOptions, IntentHelp:
		return t.handleOptions(ctx, turn)
	case IntentCancel, IntentStop:
		t.Sessions.Clear(turn.SessionID)
		return Response{Speak: pick(goodbyes), EndSession: true}, nil
	case IntentSessionEnd:
		t.Sessions.Clear(turn.SessionID)
		return Response{EndSession: true}, nil
	default:
		return t.handleFallback(turn, sess), nil
	}
}

// continueAdd runs the slot-filling flow for recipe creation. It merges the
// turn's extracted slots with any staged values; whichever required field is
// still unset determines the next prompt. When all three are resolved it
// invokes Add and clears the session regardless of outcome.
func (t *Tracker) continueAdd(ctx context.Context, turn Turn, sess *Session) (Response, error) {
	name := firstNonEmpty(turn.Slots["name"], sess.Name)
	ingredients := firstNonEmpty(turn.Slots["ingredients"], sess.Ingredients)
	kind := firstNonEmpty(turn.Slots["type"], sess.Type)

	// The general-answer slot fills whichever field is being awaited.
	if v := strings.TrimSpace(turn.Slots["value"]); v != "" {
		switch sess.State {
		case StateAwaitingName:
			if name == "" {
				name = v
			}
		case StateAwaitingIngredients:
			if ingredients == "" {
				ingredients = v
			}
		case StateAwaitingType:
			if kind == "" {
				kind = v
			}
		}
	}

	if name == "" {
		sess.State = StateAwaitingName
		return Response{
			Speak:    "Perfect! Let's add a recipe. What is it called?",
			Reprompt: "What is the name of the recipe?",
		}, nil
	}
	sess.Name = t.Recipes.NormalizeName(name)

	if ingredients == "" {
		sess.State = StateAwaitingIngredients
		return Response{
			Speak:    fmt.Sprintf("'%s' sounds delicious! What are the main ingredients? If you don't know, say: I don't know.", sess.Name),
			Reprompt: "What are the ingredients?",
		}, nil
	}
	sess.Ingredients = t.Recipes.NormalizeField(ingredients, domain.UnknownIngredients)

	if kind == "" {
		sess.State = StateAwaitingType
		withText := ""
		if sess.Ingredients != domain.UnknownIngredients {
			withText = " with " + sess.Ingredients
		}
		return Response{
			Speak:    fmt.Sprintf("Almost done with '%s'%s. What type of food is it? If you don't know, say: I don't know.", sess.Name, withText),
			Reprompt: "What type of recipe is it?",
		}, nil
	}
	sess.Type = t.Recipes.NormalizeField(kind, domain.UncategorizedType)

	return t.finishAdd(ctx, turn, sess)
}

// applyAnswer feeds a single extracted value into the pending field and
// advances the flow.
func (t *Tracker) applyAnswer(ctx context.Context, turn Turn, sess *Session, value string) (Response, error) {
	switch sess.State {
	case StateAwaitingName:
		turn.Slots = map[string]string{"name": value}
	case StateAwaitingIngredients:
		turn.Slots = map[string]string{"ingredients": value}
	case StateAwaitingType:
		turn.Slots = map[string]string{"type": value}
	}
	return t.continueAdd(ctx, turn, sess)
}

// flowFallback advances a stuck flow with the documented defaults: an
// unrecognized answer for ingredients stands in as "don't know", and one for
// the type completes the recipe uncategorized. A garbled name is re-asked
// because there is no sensible default for it.
func (t *Tracker) flowFallback(ctx context.Context, turn Turn, sess *Session) (Response, error) {
	switch sess.State {
	case StateAwaitingName:
		return Response{
			Speak:    "I didn't catch the name. Could you repeat it a little slower?",
			Reprompt: "What is the name of the recipe?",
		}, nil
	case StateAwaitingIngredients:
		sess.Ingredients = domain.UnknownIngredients
		sess.State = StateAwaitingType
		return Response{
			Speak:    fmt.Sprintf("Alright, let's continue with '%s'. What type of food is it? For example: Mexican, Italian, dessert. If you don't know, say: I don't know.", sess.Name),
			Reprompt: "What type of recipe is it?",
		}, nil
	case StateAwaitingType:
		sess.Type = domain.UncategorizedType
		return t.finishAdd(ctx, turn, sess)
	}
	sess.reset()
	return Response{
		Speak:    "Something got mixed up. Let's start over. What recipe do you want to add?",
		Reprompt: "What recipe do you want to add?",
	}, nil
}

// finishAdd invokes the lifecycle service with the staged slots and clears
// the session state regardless of the outcome. Duplicate and success differ
// only in the spoken confirmation.
func (t *Tracker) finishAdd(ctx context.Context, turn Turn, sess *Session) (Response, error) {
	name, ingredients, kind := sess.Name, sess.Ingredients, sess.Type
	t.Sessions.Clear(turn.SessionID)
	sess.reset()

	recipe, err := t.Recipes.Add(ctx, turn.UserID, name, ingredients, kind)
	if errors.Is(err, services.ErrDuplicateRecipe) {
		return Response{
			Speak:    fmt.Sprintf("'%s' is already in your recipe book. %s", name, pick(anythingElse)),
			Reprompt: pick(whatToDo),
		}, nil
	}
	if err != nil {
		return Response{}, err
	}

	recipes, err := t.Recipes.List(ctx, turn.UserID)
	if err != nil {
		return Response{}, err
	}

	withText := ""
	if recipe.Ingredients != domain.UnknownIngredients {
		withText = " with " + recipe.Ingredients
	}
	typeText := ""
	if recipe.Type != domain.UncategorizedType {
		typeText = ", type " + recipe.Type
	}
	speak := fmt.Sprintf("%s I've added '%s'%s%s. You now have %d recipes in your recipe book. %s",
		pick(confirmations), recipe.Name, withText, typeText, len(recipes), pick(anythingElse))
	return Response{Speak: speak, Reprompt: pick(whatToDo)}, nil
}

func (t *Tracker) handleLaunch(ctx context.Context, turn Turn) (Response, error) {
	data, err := t.Store.Get(ctx, turn.UserID)
	if err != nil {
		return Response{}, err
	}
	data.SyncStatuses()

	speak := welcomeMessage(len(data.Recipes), len(data.ActivePreparations), data.FrequentUser)
	if !data.FrequentUser {
		data.FrequentUser = true
		if err := t.Store.Save(ctx, turn.UserID, data); err != nil {
			return Response{}, err
		}
	}
	return Response{
		Speak:    speak,
		Reprompt: "Would you like me to remind you of the main commands, or add a recipe?",
	}, nil
}

func (t *Tracker) handleList(ctx context.Context, turn Turn, sess *Session) (Response, error) {
	filtered, desc, err := t.Recipes.FilterRecipes(ctx, turn.UserID, turn.Slots["filter"], turn.Slots["ingredients"])
	if err != nil {
		return Response{}, err
	}
	all, err := t.Recipes.List(ctx, turn.UserID)
	if err != nil {
		return Response{}, err
	}

	if len(all) == 0 {
		return Response{
			Speak:    "You don't have any recipes in your recipe book yet. Would you like to add the first one? Just say: add a recipe.",
			Reprompt: "Do you want to add your first recipe?",
		}, nil
	}
	if len(filtered) == 0 {
		return Response{
			Speak:    fmt.Sprintf("I couldn't find recipes%s. %s", desc, pick(anythingElse)),
			Reprompt: pick(whatToDo),
		}, nil
	}

	page := t.Recipes.Paginate(filtered, 0)
	names := make([]string, len(page.Items))
	for i, r := range page.Items {
		names[i] = r.Name
	}

	if !page.HasMore {
		sess.Listing = false
		sess.ListPage = 0
		sess.Filtered = nil
		speak := fmt.Sprintf("You have %d recipes%s: %s. %s", page.Total, desc, joinQuoted(names), pick(anythingElse))
		return Response{Speak: speak, Reprompt: pick(whatToDo)}, nil
	}

	sess.Listing = true
	sess.ListPage = 1
	sess.Filtered = filtered
	speak := fmt.Sprintf("You have %d recipes%s. I'll read them %d at a time. Recipes %d to %d: %s. There are %d more. Say 'next' to continue or 'exit' to finish.",
		page.Total, desc, t.Recipes.PageSize, page.Start+1, page.End, joinQuoted(names), page.Remaining)
	return Response{Speak: speak, Reprompt: "Do you want to hear more recipes? Say 'next' or 'exit'."}, nil
}

func (t *Tracker) handleNextPage(turn Turn, sess *Session) (Response, error) {
	if !sess.Listing {
		return Response{
			Speak:    "I'm not reading a list right now. Do you want to hear your recipes?",
			Reprompt: "Do you want me to list your recipes?",
		}, nil
	}

	page := t.Recipes.Paginate(sess.Filtered, sess.ListPage)
	names := make([]string, len(page.Items))
	for i, r := range page.Items {
		names[i] = r.Name
	}

	if !page.HasMore {
		sess.Listing = false
		sess.ListPage = 0
		sess.Filtered = nil
		speak := fmt.Sprintf("Recipes %d to %d: %s. That's all of them. %s", page.Start+1, page.End, joinQuoted(names), pick(anythingElse))
		return Response{Speak: speak, Reprompt: pick(whatToDo)}, nil
	}

	sess.ListPage++
	speak := fmt.Sprintf("Recipes %d to %d: %s. There are %d more. Say 'next' or 'exit'.", page.Start+1, page.End, joinQuoted(names), page.Remaining)
	return Response{Speak: speak, Reprompt: "Say 'next' or 'exit'."}, nil
}

func (t *Tracker) handleSearch(ctx context.Context, turn Turn) (Response, error) {
	query := firstNonEmpty(turn.Slots["query"], turn.Slots["name"])
	if query == "" {
		return Response{
			Speak:    "What recipe do you want to find?",
			Reprompt: "Tell me the name of the recipe you're looking for.",
		}, nil
	}

	found, err := t.Recipes.Search(ctx, turn.UserID, query)
	if err != nil {
		return Response{}, err
	}

	switch {
	case len(found) == 0:
		return Response{
			Speak:    fmt.Sprintf("I couldn't find any recipe named '%s'. %s", query, pick(anythingElse)),
			Reprompt: pick(whatToDo),
		}, nil
	case len(found) == 1:
		r := found[0]
		speak := fmt.Sprintf("I found '%s'. Ingredients: %s. Type: %s. Status: %s. ", r.Name, r.Ingredients, r.Type, r.Status)
		if r.TotalPreparations > 0 {
			speak += fmt.Sprintf("It has been prepared %d times. ", r.TotalPreparations)
		}
		return Response{Speak: speak + pick(anythingElse), Reprompt: pick(whatToDo)}, nil
	default:
		shown := found
		if len(shown) > 3 {
			shown = shown[:3]
		}
		details := make([]string, len(shown))
		for i, r := range shown {
			details[i] = fmt.Sprintf("'%s' with %s", r.Name, r.Ingredients)
		}
		speak := fmt.Sprintf("I found %d recipes matching '%s': %s", len(found), query, strings.Join(details, ", "))
		if len(found) > 3 {
			speak += fmt.Sprintf(", and %d more. ", len(found)-3)
		} else {
			speak += ". "
		}
		return Response{Speak: speak + pick(anythingElse), Reprompt: pick(whatToDo)}, nil
	}
}

func (t *Tracker) handlePrepare(ctx context.Context, turn Turn) (Response, error) {
	name := strings.TrimSpace(turn.Slots["name"])
	if name == "" {
		return Response{
			Speak:    "Of course! Which recipe do you want to prepare?",
			Reprompt: "What is the name of the recipe?",
		}, nil
	}

	prep, err := t.Preparations.Start(ctx, turn.UserID, name, turn.Slots["person"])
	available, examples, infoErr := t.Recipes.AvailableInfo(ctx, turn.UserID)
	if infoErr != nil {
		return Response{}, infoErr
	}

	switch {
	case errors.Is(err, services.ErrRecipeNotFound):
		speak := fmt.Sprintf("Hmm, I can't find '%s' in your recipe book. ", name)
		switch {
		case available > 0:
			speak += fmt.Sprintf("You have available: %s. Which one do you want to prepare?", joinQuoted(examples))
		default:
			all, lerr := t.Recipes.List(ctx, turn.UserID)
			if lerr != nil {
				return Response{}, lerr
			}
			if len(all) > 0 {
				speak += "All of your recipes are being prepared, or I don't recognize that exact name."
			} else {
				speak += "In fact, you don't have any recipes yet. Say 'add a recipe' to get started."
			}
		}
		return Response{Speak: speak, Reprompt: "Which recipe do you want to prepare?"}, nil

	case errors.Is(err, services.ErrAlreadyPreparing):
		speak := fmt.Sprintf("'%s' is already being prepared. ", name)
		if available > 0 {
			speak += fmt.Sprintf("Want to prepare another one? You have available: %s.", joinQuoted(examples))
		} else {
			speak += "You have no more recipes available to prepare."
		}
		return Response{Speak: speak, Reprompt: "Which other recipe do you want to prepare?"}, nil

	case err != nil:
		return Response{}, err
	}

	speak := fmt.Sprintf("%s I've registered the preparation of '%s' by %s. The suggested date to finish it is %s. ",
		pick(confirmations), prep.Name, prep.Person, prep.DueAt.Format("Monday, January 2"))
	if available > 0 {
		speak += fmt.Sprintf("You have %d recipes still available. ", available)
	} else {
		speak += "You have no recipes left available to prepare! "
	}
	return Response{Speak: speak + pick(anythingElse), Reprompt: pick(whatToDo)}, nil
}

func (t *Tracker) handleComplete(ctx context.Context, turn Turn) (Response, error) {
	name := strings.TrimSpace(turn.Slots["name"])
	prepID := strings.TrimSpace(turn.Slots["preparation_id"])
	if name == "" && prepID == "" {
		return Response{
			Speak:    "Nice! Which recipe did you complete?",
			Reprompt: "What is the name of the recipe?",
		}, nil
	}

	completion, err := t.Preparations.Complete(ctx, turn.UserID, name, prepID)
	remaining, examples, infoErr := t.Preparations.ActiveInfo(ctx, turn.UserID)
	if infoErr != nil {
		return Response{}, infoErr
	}

	switch {
	case errors.Is(err, services.ErrNoActivePreparations):
		return Response{
			Speak:    "You have no recipes in preparation right now. All of your recipes are available. " + pick(anythingElse),
			Reprompt: pick(whatToDo),
		}, nil

	case errors.Is(err, services.ErrPreparationNotFound):
		speak := fmt.Sprintf("Hmm, I couldn't find an active preparation for '%s'. ", firstNonEmpty(name, prepID))
		switch {
		case remaining == 1:
			speak += fmt.Sprintf("You only have %s in preparation. Is it that one?", examples[0])
		case remaining > 1:
			speak += fmt.Sprintf("You have in preparation: %s. Which of these is it?", strings.Join(examples, ", "))
		default:
			speak += "In fact, you have nothing in preparation anymore!"
		}
		return Response{Speak: speak, Reprompt: "Which recipe do you want to complete?"}, nil

	case err != nil:
		return Response{}, err
	}

	speak := fmt.Sprintf("%s I've registered the completion of '%s'. ", pick(confirmations), completion.Name)
	if completion.CompletedOnTime {
		speak += "It was completed on time! "
	} else {
		speak += "It was completed a little late, but no problem. "
	}
	speak += "I hope you enjoyed it. "
	if remaining == 1 {
		speak += "You still have 1 recipe in preparation. "
	} else if remaining > 1 {
		speak += fmt.Sprintf("You still have %d recipes in preparation. ", remaining)
	}
	return Response{Speak: speak + pick(anythingElse), Reprompt: pick(whatToDo)}, nil
}

func (t *Tracker) handleActive(ctx context.Context, turn Turn) (Response, error) {
	summary, err := t.Summaries.Active(ctx, turn.UserID)
	if err != nil {
		return Response{}, err
	}

	if summary.Total == 0 {
		return Response{
			Speak:    "Excellent! You have no recipes in preparation right now. They are all available. " + pick(anythingElse),
			Reprompt: pick(whatToDo),
		}, nil
	}

	var speak string
	if summary.Total == 1 {
		speak = "Let me see... You have just one recipe in preparation: "
	} else {
		speak = fmt.Sprintf("Let me check... You have %d recipes in preparation. Here are the first ones: ", summary.Total)
	}
	shown := summary.Details
	if len(shown) > 5 {
		shown = shown[:5]
	}
	speak += strings.Join(shown, "; ") + ". "
	if summary.Total > 5 {
		speak += fmt.Sprintf("And %d more. ", summary.Total-5)
	}
	if summary.HasOverdue {
		speak += "Heads up! Some preparations are overdue. I suggest completing them soon. "
	} else if summary.HasNearDue {
		speak += "Some are due soon, don't forget! "
	}
	return Response{Speak: speak + pick(anythingElse), Reprompt: pick(whatToDo)}, nil
}

func (t *Tracker) handleHistory(ctx context.Context, turn Turn) (Response, error) {
	summary, err := t.Summaries.History(ctx, turn.UserID)
	if err != nil {
		return Response{}, err
	}

	if summary.Total == 0 {
		return Response{
			Speak:    "You haven't registered any completed recipes yet. When you prepare and complete recipes, they will show up here. " + pick(anythingElse),
			Reprompt: pick(whatToDo),
		}, nil
	}

	speak := fmt.Sprintf("You have registered %d ", summary.Total)
	if summary.Total == 1 {
		speak += "completion in total. "
	} else {
		speak += "completions in total. "
	}
	if summary.Complete {
		speak += "The completed recipes are: " + strings.Join(summary.Details, ", ") + ". "
	} else {
		speak += "The 5 most recent are: " + strings.Join(summary.Details, ", ") + ". "
		speak += fmt.Sprintf("You have %d more completions in your history. ", summary.Remaining)
	}
	return Response{Speak: speak + pick(anythingElse), Reprompt: pick(whatToDo)}, nil
}

func (t *Tracker) handleDelete(ctx context.Context, turn Turn) (Response, error) {
	name := strings.TrimSpace(turn.Slots["name"])
	if name == "" {
		return Response{
			Speak:    "Which recipe do you want to remove from your recipe book?",
			Reprompt: "What is the name?",
		}, nil
	}

	removed, err := t.Recipes.Delete(ctx, turn.UserID, name)
	switch {
	case errors.Is(err, services.ErrRecipeNotFound):
		return Response{
			Speak:    fmt.Sprintf("I couldn't find the recipe '%s' in your recipe book. Make sure the name is exact. %s", name, pick(anythingElse)),
			Reprompt: pick(whatToDo),
		}, nil
	case errors.Is(err, services.ErrInPreparation):
		return Response{
			Speak:    fmt.Sprintf("I can't delete '%s' because it is currently being prepared. Complete the preparation first. Say 'complete recipe' when it's done.", name),
			Reprompt: pick(whatToDo),
		}, nil
	case err != nil:
		return Response{}, err
	}

	recipes, err := t.Recipes.List(ctx, turn.UserID)
	if err != nil {
		return Response{}, err
	}
	speak := fmt.Sprintf("%s I've removed '%s' from your recipe book. You now have %d recipes. %s",
		pick(confirmations), removed.Name, len(recipes), pick(anythingElse))
	return Response{Speak: speak, Reprompt: pick(whatToDo)}, nil
}

func (t *Tracker) handleReset(ctx context.Context, turn Turn) (Response, error) {
	t.Sessions.Clear(turn.SessionID)

	data, err := t.Store.Reset(ctx, turn.UserID)
	if err != nil {
		return Response{}, err
	}
	data.SyncStatuses()
	if err := t.Store.Save(ctx, turn.UserID, data); err != nil {
		return Response{}, err
	}

	speak := fmt.Sprintf("I've cleared the cache and synchronized your recipe book. You have %d recipes in total and %d active preparations. %s",
		len(data.Recipes), len(data.ActivePreparations), pick(anythingElse))
	return Response{Speak: speak, Reprompt: pick(whatToDo)}, nil
}

func (t *Tracker) handleOptions(ctx context.Context, turn Turn) (Response, error) {
	data, err := t.Store.Get(ctx, turn.UserID)
	if err != nil {
		return Response{}, err
	}

	speak := "Of course! " + pick(optionsMenu)
	if len(data.Recipes) == 0 {
		speak += " Since you don't have any recipes yet, I suggest starting by adding some."
	} else if len(data.ActivePreparations) > 0 {
		speak += " Remember you have some recipes in preparation."
	}
	return Response{Speak: speak + " " + pick(whatToDo), Reprompt: pick(whatToDo)}, nil
}

func (t *Tracker) handleFallback(turn Turn, sess *Session) Response {
	if sess.Listing {
		return Response{
			Speak:    "I didn't get that. Do you want to hear more recipes? Say 'next' to continue or 'exit' to finish.",
			Reprompt: "Say 'next' or 'exit'.",
		}
	}
	return Response{
		Speak:    "Sorry, I didn't understand that. Remember I can help you add recipes, list them, prepare them, or register completions. " + pick(whatToDo),
		Reprompt: "What would you like to do?",
	}
}

// extractAnswer pulls the most plausible spoken value from a turn's slots,
// preferring the generic answer slot, then the add-flow field slots, then
// anything else in a stable order.
func extractAnswer(turn Turn) string {
	for _, key := range []string{"value", "name", "ingredients", "type", "query"} {
		if v := strings.TrimSpace(turn.Slots[key]); v != "" {
			return v
		}
	}
	keys := make([]string, 0, len(turn.Slots))
	for k := range turn.Slots {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := strings.TrimSpace(turn.Slots[k]); v != "" {
			return v
		}
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
