package llm

import "fmt"

// ChatOptions shapes the system prompt for tutoring conversations.
type ChatOptions struct {
	Level              string
	UserLanguage       string
	CorrectionsEnabled bool
}

// LessonOptions shapes the system prompts for lesson and quiz generation.
type LessonOptions struct {
	Topic               string
	Level               string
	InstructionLanguage string
	Complexity          string
}

// Vocabulary helper modes.
const (
	HelperExample     = "example"
	HelperExplanation = "explanation"
)

const styleRules = `STRICT STYLING RULES:
- Format in clean HTML, never markdown, never inline styles.
- Use semantic elements and Tailwind-style utility classes for spacing (mb-*).
- Always wrap Japanese text in <ruby> tags with furigana in <rt>.
- Body text uses text-gray-200, bold uses <strong class="text-gray-100 font-semibold">.`

// ChatSystemPrompt builds the tutor persona for a conversation turn.
func ChatSystemPrompt(opts ChatOptions) string {
	prompt := "You are a Japanese language tutor."
	if opts.UserLanguage != "" {
		prompt += fmt.Sprintf(" The student's native language is %s.", opts.UserLanguage)
	}

	if opts.CorrectionsEnabled {
		prompt += `
Always politely point out and explain any mistakes in Japanese usage, grammar, or pronunciation.
Format corrections like this: "[Correction: <incorrect> -> <correct>] <explanation>"`
	} else {
		prompt += `
Do not correct mistakes unless explicitly asked. Focus on natural conversation.`
	}

	switch opts.Level {
	case "beginner":
		prompt += `
Teach using simple Japanese words and always provide English translations.
Focus on basic grammar and everyday phrases.
Break down concepts clearly and use romaji when introducing new words.`
	case "intermediate":
		prompt += `
Communicate primarily in Japanese but provide English translations for new or complex terms.
Use more natural Japanese expressions and introduce common colloquialisms.
Use hiragana, katakana, and basic kanji.
Explain grammar points in simple terms.`
	case "advanced":
		prompt += `
Communicate exclusively in Japanese unless specifically asked for translations.
Use natural, native-level Japanese including idioms and advanced grammar.
Use kanji freely and expect understanding of complex topics.
Provide nuanced explanations of grammar and usage.`
	}

	return prompt
}

// LessonSystemPrompt builds the teacher persona for lesson generation.
func LessonSystemPrompt(opts LessonOptions) string {
	var language string
	switch opts.InstructionLanguage {
	case "japanese":
		language = "Provide all instructions and explanations in Japanese only."
	case "mixed":
		language = "Provide explanations in both Japanese and English, with Japanese first followed by English translations."
	default:
		language = "Provide all instructions and explanations in English."
	}

	var complexity string
	switch opts.Complexity {
	case "simple":
		complexity = "Keep explanations brief and straightforward, focusing on core concepts."
	case "detailed":
		complexity = "Provide detailed explanations with multiple examples and in-depth analysis of concepts."
	default:
		complexity = "Provide balanced explanations with clear examples."
	}

	return fmt.Sprintf(`You are an expert Japanese language teacher creating a structured lesson.
%s
%s

Create a comprehensive lesson with these sections:
1. Introduction (brief overview)
2. Vocabulary (with furigana and translations)
3. Main Content (with examples)
4. Grammar Points (if applicable)
5. Practice Examples
6. Cultural Context
7. Common Mistakes to Avoid

%s
- Use these exact class names: 'example-block', 'note-box', 'warning-box', 'practice-exercise', 'vocab-item', 'grammar-point'.
- Section titles use <h3 class="section-title text-xl text-white mb-4">.

Include practical, real-world examples matching the student's level.`, language, complexity, styleRules)
}

// LessonUserPrompt is the user turn that accompanies LessonSystemPrompt.
func LessonUserPrompt(opts LessonOptions) string {
	return fmt.Sprintf("Create a %s level lesson about: %s", opts.Level, opts.Topic)
}

// QuizSystemPrompt asks for exactly five multiple-choice questions as JSON.
func QuizSystemPrompt(opts LessonOptions) string {
	var language string
	switch opts.InstructionLanguage {
	case "japanese":
		language = "Write questions in Japanese."
	case "mixed":
		language = "Write questions in both Japanese and English."
	default:
		language = "Write questions in English."
	}

	return fmt.Sprintf(`Create EXACTLY 5 multiple-choice quiz questions based on the lesson content.
%s

Format as a JSON array with 5 objects following this structure:
[
    {
        "question": "Question text",
        "options": ["Option 1", "Option 2", "Option 3", "Option 4"],
        "correctAnswer": "Option 1",
        "explanation": "Detailed explanation",
        "difficulty": "easy"
    }
]

STRICT RULES:
1. Root element MUST be an array
2. EXACTLY 5 items in the array
3. No Markdown formatting
4. No nested objects or properties
5. All questions must relate to the lesson content`, language)
}

// QuizUserPrompt is the user turn that accompanies QuizSystemPrompt.
func QuizUserPrompt(opts LessonOptions, lessonContent string) string {
	return fmt.Sprintf("Create quiz questions for a %s lesson about: %s\n\nLesson content: %s",
		opts.Level, opts.Topic, lessonContent)
}

// HelperSystemPrompt builds the vocabulary helper persona for the given mode.
func HelperSystemPrompt(kind string) string {
	base := "You are a Japanese language expert helping students understand vocabulary usage."

	if kind == HelperExplanation {
		return fmt.Sprintf(`%s

Create a comprehensive explanation with these sections:
1. Basic Usage
2. Common Contexts
3. Nuances & Connotations
4. Common Collocations
5. Cultural Notes (if applicable)

%s
- Use these exact class names: 'vocab-example', 'usage-note', 'context-box', 'collocation-item', 'culture-note'.
- Subsection titles use <h4 class="subsection-title text-lg text-white mb-3">.`, base, styleRules)
	}

	return fmt.Sprintf(`%s

Generate 3 natural example sentences showing progressive complexity:
1. Basic usage
2. Intermediate context
3. Advanced application

%s
- Wrap each sentence in <div class="vocab-example"> with japanese, translation and context lines.`, base, styleRules)
}

// HelperUserPrompt is the user turn that accompanies HelperSystemPrompt.
func HelperUserPrompt(kind, word, reading string) string {
	if reading == "" {
		reading = "N/A"
	}
	if kind == HelperExplanation {
		return fmt.Sprintf("Explain the usage of the Japanese word %q (reading: %s).", word, reading)
	}
	return fmt.Sprintf("Generate 3 natural example sentences using the Japanese word %q (reading: %s).", word, reading)
}
