package coach

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// historyTurnLimit is how many trailing conversation turns survive into
	// the prompt (3 exchanges).
	historyTurnLimit = 6

	// historyTurnMaxChars caps each replayed turn to keep the prompt small.
	historyTurnMaxChars = 200

	// planProfileMaxChars caps the profile block in plan prompts.
	planProfileMaxChars = 400
)

const chatPromptTemplate = `You are CoachX, an expert personal training assistant%s.
%s

CRITICAL RULES:
1. You ONLY answer questions related to fitness, training, sports, exercise, nutrition, and athletic performance.
2. If the user asks about their profile, identity, or "who am I", provide a summary of their fitness profile using the user context above. This is a valid fitness-related question.
3. NEVER generate complete workout plans or training routines. If asked for a plan, respond:
   "Para generar un plan de entrenamiento personalizado completo, usa el botón 'Generate Workout Plan' en el dashboard. Yo estoy aquí para responder preguntas específicas sobre técnica, nutrición, ejercicios individuales y consejos de entrenamiento."
4. You CAN give advice on:
   - User's fitness profile and background
   - Specific exercise techniques (how to do a proper squat, jab technique, etc.)
   - Nutrition tips and meal suggestions
   - Recovery and injury prevention
   - Training concepts and principles
   - Exercise modifications
5. If the user asks about topics unrelated to fitness (cooking, politics, general knowledge, etc.), respond:
   "Lo siento, solo puedo ayudarte con temas relacionados con entrenamiento, ejercicio y fitness. ¿Tienes alguna pregunta sobre tu entrenamiento?"
6. If the user uses inappropriate language or insults, respond professionally:
   "Estoy aquí para ayudarte con tu entrenamiento. ¿En qué puedo asistirte?"
7. IMPORTANT: Format your response in plain text. Do NOT use markdown formatting like **, *, ###, or bullet points with *. Use simple numbered lists (1., 2.) or line breaks for structure.

You have access to official training knowledge from professional sources.

CONTEXT FROM KNOWLEDGE BASE:
%s
%s

USER QUESTION:
%s

First, determine if this question is related to fitness, training, sports, exercise, or nutrition.
- If YES: Provide accurate, helpful, and motivating training advice based on the context above.
  Always prioritize safety and proper technique. Keep your response clear, concise, and actionable.
- If NO: Respond with the appropriate message from the rules above.

REMEMBER: You are a fitness assistant ONLY. Do not answer questions outside your domain.`

// ChatPromptParams carries everything the chat prompt is assembled from.
type ChatPromptParams struct {
	Query          string
	Sport          string
	ProfileSummary string // empty when no profile exists
	History        []Turn
	Context        string // formatted knowledge base context
}

// BuildChatPrompt assembles the full chat prompt: persona and rules, optional
// profile block, retrieved context, recent history, and the user question.
func BuildChatPrompt(p ChatPromptParams) string {
	sportContext := ""
	if p.Sport != "" {
		sportContext = " specializing in " + p.Sport
	}

	userSection := ""
	if p.ProfileSummary != "" {
		userSection = "\n\n" + p.ProfileSummary +
			"\n\nIMPORTANT: Use the user profile information above to personalize your response. Consider their experience level, goals, limitations, and available resources when giving advice."
	}

	return fmt.Sprintf(chatPromptTemplate,
		sportContext, userSection, p.Context, formatHistory(p.History), p.Query)
}

// formatHistory renders the trailing turns of a conversation, each prefixed
// by speaker and truncated, so the model can stay coherent across exchanges.
// Empty history yields an empty string (no section at all).
func formatHistory(history []Turn) string {
	if len(history) == 0 {
		return ""
	}
	if len(history) > historyTurnLimit {
		history = history[len(history)-historyTurnLimit:]
	}

	lines := make([]string, 0, len(history))
	for _, turn := range history {
		content := turn.Content
		if len(content) > historyTurnMaxChars {
			content = truncateAtRune(content, historyTurnMaxChars) + "..."
		}
		prefix := "CoachX:"
		if turn.Role == RoleUser {
			prefix = "Usuario:"
		}
		lines = append(lines, prefix+" "+content)
	}

	return "\n\nCONVERSATION HISTORY:\n" + strings.Join(lines, "\n") +
		"\n\nIMPORTANT: Continue this conversation naturally. Reference previous exchanges when relevant."
}

// BuildPlanPrompt assembles the workout plan generation prompt. The profile
// block is truncated to keep room for the plan itself in the output budget.
func BuildPlanPrompt(profileContext, knowledgeContext string, durationWeeks int, sport, customNotes string) string {
	if len(profileContext) > planProfileMaxChars {
		profileContext = truncateAtRune(profileContext, planProfileMaxChars)
	}

	customSection := ""
	if customNotes != "" {
		customSection = "\n\nADDITIONAL REQUIREMENTS:\n" + customNotes
	}

	// Show at most the first three weeks in the shape example.
	exampleWeeks := durationWeeks
	if exampleWeeks > 3 {
		exampleWeeks = 3
	}
	weekLines := make([]string, 0, exampleWeeks)
	for week := 1; week <= exampleWeeks; week++ {
		weekLines = append(weekLines, fmt.Sprintf(`    "week_%d": [...]`, week))
	}
	weeksExample := strings.Join(weekLines, ",\n")

	var b strings.Builder
	fmt.Fprintf(&b, "Create a %d-week %s training plan. JSON only, be concise.\n\n", durationWeeks, sport)
	fmt.Fprintf(&b, "User: %s\n%s\n\n", profileContext, customSection)
	if knowledgeContext != "" {
		fmt.Fprintf(&b, "REFERENCE KNOWLEDGE:\n%s\n\n", knowledgeContext)
	}
	fmt.Fprintf(&b, `IMPORTANT:
- Generate EXACTLY %d weeks (week_1 through week_%d)
- Include REST DAYS explicitly in each week
- For rest days use: {"day": "Rest", "focus": "Recovery", "exercises": [], "duration_min": 0}

Format:
{
  "title": "Short title",
  "description": "1 sentence",
  "plan_structure": {
%s
  }
}

Week structure: Array of daily workouts
Day format: {"day": "Day name", "focus": "Focus area", "exercises": [{"name": "Exercise", "sets": 3, "reps": "10-12", "rest_seconds": 60, "notes": "Optional tip"}], "duration_min": 45}

Guidelines:
- Use %s-specific exercises, bodyweight if no equipment
- 3-5 exercises per training day
- Include 1-2 rest days per week based on user's available days
- Progress difficulty across weeks
- Keep exercise notes brief
- Include warmup/cooldown in duration

JSON only, no markdown blocks.`, durationWeeks, durationWeeks, weeksExample, sport)

	return b.String()
}

// truncateAtRune cuts s to at most max bytes without splitting a UTF-8
// sequence: the cut backs up to the nearest rune start.
func truncateAtRune(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// knowledgeFallback seeds the plan prompt when retrieval yields nothing.
const knowledgeFallback = "Use general fitness principles and progressive overload."
