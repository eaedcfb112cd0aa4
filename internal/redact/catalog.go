package redact

// piiLabels is the label vocabulary: surface strings that name a PII category
// in real documents. Entries are grouped into 25 semantic categories and the
// order below is load-bearing: labels are applied sequentially, so generic
// single-word entries ("id", "number", "address") sit after the multi-word
// variants of their category. Matching is case-insensitive, so only
// punctuation/spacing variants are listed separately.
//
// Labels are matched literally (regex metacharacters escaped) with no leading
// word boundary, so "id" also matches the tail of a longer word followed by a
// separator. That matches the behavior of the catalog as originally deployed.
var piiLabels = []string{
	// Government issued ID
	"government issued id",
	"govt issued id",
	"gov issued id",
	"gov issued identification",
	"gov id",
	"govt id",
	"government id",
	"government identification",
	"id issued by government",
	"government identity card",
	"id card",
	"identity card",
	"identification id",
	"official id",
	"official identification",
	"national id",
	"national identification",
	"gov identity",

	// Social Security Number
	"social security number",
	"ssn",
	"S.S.N.",
	"social security no",
	"ss number",
	"soc sec no",
	"ssn number",
	"social sec number",
	"social security #",

	// Tax ID
	"tax id",
	"tax identification number",
	"tin",
	"T.I.N.",
	"tax no",
	"tax number",
	"taxpayer id",
	"tax payer number",

	// Federal employer ID
	"federal employer id",
	"employer id",
	"employer identification",
	"feid",
	"F.E.I.D.",

	// FEIN
	"fein",
	"F.E.I.N.",
	"federal employer identification number",
	"fein number",
	"federal ein",
	"employer ein",

	// Driver's license
	"driver's license",
	"driver' s license",
	"license",
	"drivers license",
	"driver license",
	"driving license",
	"dl number",
	"dl",
	"D.L.",
	"license number",
	"driver id",

	// Identification card
	"identification card",
	"id",
	"identification",
	"id number",
	"identification number",

	// Passport
	"passport",
	"passport number",
	"passport no",
	"pp number",
	"passport id",

	// Military ID
	"military id",
	"army id",
	"navy id",
	"airforce id",
	"defense id",
	"military identification",

	// Date of birth
	"date of birth",
	"dob",
	"birth date",
	"birth info",
	"D.o.B.",
	"date born",
	"born on",
	"birthdate",

	// Home address
	"home address",
	"residential address",
	"residence address",
	"address",
	"addr",
	"street address",
	"street addr",
	"residential addr",

	// Home telephone number
	"home telephone number",
	"telephone number",
	"home phone",
	"landline",
	"tel number",

	// Cell phone number
	"cell phone number",
	"mobile number",
	"mobile no",
	"cell number",
	"phone number",
	"contact number",
	"contact no",
	"ph number",
	"cell no",

	// Email address
	"email address",
	"email",
	"e-mail",
	"email id",
	"mail id",
	"gmail",
	"g-mail",

	// Social media contact information
	"social media contact information",
	"social media info",
	"social handle",
	"social contact",
	"social media account",

	// Health insurance policy number
	"health insurance policy number",
	"insurance policy number",
	"policy number",
	"policy no",
	"health insurance number",
	"insurance number",

	// Medical record number
	"medical record number",
	"MRN",
	"medical record no",
	"med record number",
	"medical",
	"record",
	"number",

	// Claim number
	"claim number",
	"claim no",
	"claim id",

	// Patient account number
	"patient account number",
	"patient id",
	"patient account",

	// File number
	"file number",
	"file no",
	"file id",
	"file reference",

	// Chart number
	"chart number",
	"chart no",
	"chart id",

	// Individual financial account number
	"individual financial account number",
	"financial account number",
	"financial account",
	"account number",

	// Bank account number
	"bank account number",
	"bank no",
	"account no",
	"acct number",

	// Financial information
	"financial information",
	"financial data",
	"financial details",

	// Credit card number
	"credit card number",
	"credit card",
	"card number",
	"cc number",
	"card no",
	"card",
}

// structuralPattern recognizes a self-contained PII token regardless of any
// preceding label.
type structuralPattern struct {
	Name string
	Expr string
}

// structuralPatterns are applied after the label pass, in this order.
// Masked runs cannot re-match: the mask glyph is not a digit, letter, or '@'.
var structuralPatterns = []structuralPattern{
	{Name: "SSN", Expr: `\b\d{3}-\d{2}-\d{4}\b`},
	{Name: "Phone", Expr: `\b\+?\d{1,3}?[-.\s]?\(?\d{2,4}\)?[-.\s]?\d{3,4}[-.\s]?\d{3,4}\b`},
	{Name: "Email", Expr: `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`},
	{Name: "CreditCard", Expr: `\b(?:\d{4}[-\s]?){3}\d{4}\b`},
	{Name: "DateMMDDYYYY", Expr: `\b(?:0?[1-9]|1[0-2])[-/.](?:0?[1-9]|[12]\d|3[01])[-/.]\d{4}\b`},
}
