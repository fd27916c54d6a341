// Package prompt contains the text utilities used to shape what an agent
// sends to its model: indentation-normalized prompt templates, a system
// prompt builder (identity, behavior guidelines, reasoning guidance, tool
// roster, current date/time) and user input augmentation with extracted
// keywords.
//
// Keyword extraction is best effort: language detection plus stopword removal
// plus frequency scoring over unigrams and bigrams. Failures degrade to an
// empty keyword list and never fail the enclosing agent execution.
package prompt
