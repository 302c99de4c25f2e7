package keyphrases

var stopwords = toSet(
	"a", "about", "above", "after", "again", "against", "all", "also", "am", "an", "and", "any", "are", "aren't", "as", "at",
	"be", "because", "been", "before", "being", "below", "between", "both", "but", "by",
	"can", "cannot", "could", "couldn't",
	"did", "didn't", "do", "does", "doesn't", "doing", "don't", "down", "during",
	"each", "either", "else", "ever", "every",
	"few", "for", "from", "further",
	"get", "gets", "got",
	"had", "hadn't", "has", "hasn't", "have", "haven't", "having", "he", "her", "here", "hers", "herself", "him", "himself", "his", "how", "however",
	"i", "if", "in", "into", "is", "isn't", "it", "it's", "its", "itself",
	"just",
	"let", "like",
	"many", "may", "me", "might", "more", "most", "much", "must", "my", "myself",
	"neither", "no", "nor", "not", "now",
	"of", "off", "often", "on", "once", "only", "or", "other", "ought", "our", "ours", "ourselves", "out", "over", "own",
	"per",
	"rather",
	"same", "shall", "she", "should", "shouldn't", "since", "so", "some", "still", "such",
	"than", "that", "the", "their", "theirs", "them", "themselves", "then", "there", "these", "they", "this", "those", "though", "through", "thus", "to", "too",
	"under", "until", "up", "upon", "us",
	"very",
	"was", "wasn't", "we", "were", "weren't", "what", "when", "where", "whether", "which", "while", "who", "whom", "whose", "why", "will", "with", "within", "without", "won't", "would", "wouldn't",
	"yet", "you", "your", "yours", "yourself", "yourselves",
	"'s", "'re", "'ve", "'ll", "'d", "n't",
)

func toSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
