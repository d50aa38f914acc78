// Package modelfamily infers the model family and variant from a free-text
// model name, and maps them to tuned inference parameters.
//
// Families are matched in registration order with unanchored, case-insensitive
// patterns; the first matching family wins. Variants are detected from
// keywords in the name, in fixed priority: code, chat, instruct.
package modelfamily
