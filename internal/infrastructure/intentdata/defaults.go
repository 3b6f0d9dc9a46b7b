package intentdata

import "github.com/rudradey/campus-companion/internal/core/domain"

// DefaultTrainingExamples is the seed corpus for the ML tier. It is
// intentionally small and campus-specific; redeployments grow it through
// the training-data file instead of editing this table.
func DefaultTrainingExamples() []domain.TrainingExample {
	return []domain.TrainingExample{
		{Text: "what is the phone number of the registrar office", Label: domain.IntentDBContact},
		{Text: "give me the email of the computer science hod", Label: domain.IntentDBContact},
		{Text: "how do i reach the hostel warden", Label: domain.IntentDBContact},
		{Text: "contact details for the placement cell", Label: domain.IntentDBContact},
		{Text: "canteen phone number please", Label: domain.IntentDBContact},
		{Text: "whom should i call about my id card", Label: domain.IntentDBContact},
		{Text: "mail id of the exam cell", Label: domain.IntentDBContact},
		{Text: "number for the medical center", Label: domain.IntentDBContact},
		{Text: "how do i contact the library staff", Label: domain.IntentDBContact},
		{Text: "helpline for fee payment issues", Label: domain.IntentDBContact},

		{Text: "where is the main auditorium", Label: domain.IntentDBLocation},
		{Text: "which building is the physics lab in", Label: domain.IntentDBLocation},
		{Text: "directions to the sports complex", Label: domain.IntentDBLocation},
		{Text: "which floor is the dean office on", Label: domain.IntentDBLocation},
		{Text: "where can i find the xerox shop", Label: domain.IntentDBLocation},
		{Text: "location of the boys hostel", Label: domain.IntentDBLocation},
		{Text: "how do i get to the central library", Label: domain.IntentDBLocation},
		{Text: "which block has the seminar hall", Label: domain.IntentDBLocation},
		{Text: "where is room 204", Label: domain.IntentDBLocation},
		{Text: "is the atm inside the campus", Label: domain.IntentDBLocation},

		{Text: "how is cgpa calculated from sgpa", Label: domain.IntentRAG},
		{Text: "what is the minimum attendance requirement", Label: domain.IntentRAG},
		{Text: "explain the grading policy for electives", Label: domain.IntentRAG},
		{Text: "what documents are needed for admission", Label: domain.IntentRAG},
		{Text: "rules for hostel leave during exams", Label: domain.IntentRAG},
		{Text: "how many credits do i need to graduate", Label: domain.IntentRAG},
		{Text: "what is the procedure for revaluation", Label: domain.IntentRAG},
		{Text: "scholarship eligibility criteria", Label: domain.IntentRAG},
		{Text: "what happens if i have a backlog", Label: domain.IntentRAG},
		{Text: "anti ragging policy of the institute", Label: domain.IntentRAG},
		{Text: "syllabus for the data structures course", Label: domain.IntentRAG},
		{Text: "when can i apply for a transcript", Label: domain.IntentRAG},

		{Text: "hello there", Label: domain.IntentSmallTalk},
		{Text: "hi how are you doing", Label: domain.IntentSmallTalk},
		{Text: "good morning", Label: domain.IntentSmallTalk},
		{Text: "thanks a lot for the help", Label: domain.IntentSmallTalk},
		{Text: "thank you so much", Label: domain.IntentSmallTalk},
		{Text: "bye see you later", Label: domain.IntentSmallTalk},
		{Text: "hey what is up", Label: domain.IntentSmallTalk},
		{Text: "good evening", Label: domain.IntentSmallTalk},

		{Text: "tell me a joke", Label: domain.IntentAIFallback},
		{Text: "what do you think about the weather today", Label: domain.IntentAIFallback},
		{Text: "can you write a poem for me", Label: domain.IntentAIFallback},
		{Text: "who won the cricket match yesterday", Label: domain.IntentAIFallback},
		{Text: "what is the meaning of life", Label: domain.IntentAIFallback},
		{Text: "recommend a good movie", Label: domain.IntentAIFallback},
		{Text: "help me plan my weekend", Label: domain.IntentAIFallback},
		{Text: "translate this sentence to french", Label: domain.IntentAIFallback},
	}
}
