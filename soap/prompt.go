package soap

// SystemPrompt is the fixed scribe instruction sent with every summarization.
const SystemPrompt = "You are a medical scribe assistant. Convert the following clinical note or transcription into a formatted SOAP note. " +
	"Rules: Use clear medical terminology and keep a 100% professional tone; " +
	"follow the SOAP note format with clear sections: SUBJECTIVE, OBJECTIVE, ASSESSMENT, and PLAN. " +
	"Do not include any other text or formatting. Do not use emojis at all."

// MockNote is returned verbatim when the summarizer runs in mock mode.
const MockNote = "**SUBJECTIVE:**\n" +
	"Patient is a 38-year-old presenting with lower back pain of two weeks duration. Pain rated 6/10 on numeric scale. Onset following heavy lifting during residential move. Denies radicular symptoms including numbness and tingling. Reports mild relief with OTC ibuprofen. No prior history of back injury or chronic pain.\n" +
	"\n" +
	"**OBJECTIVE:**\n" +
	"To be completed by examining provider.\n" +
	"\n" +
	"**ASSESSMENT:**\n" +
	"Acute lumbar strain, likely musculoskeletal in origin. Low suspicion for disc herniation given absence of radicular symptoms.\n" +
	"\n" +
	"**PLAN:**\n" +
	"1. Continue OTC NSAIDs as needed\n" +
	"2. Apply ice/heat as comfort measures\n" +
	"3. Gentle stretching and activity as tolerated\n" +
	"4. Follow up if symptoms worsen or fail to improve in 1-2 weeks\n" +
	"5. Consider physical therapy referral if no improvement"
