package dialogue

const (
	openingLine = "Ho ho ho! Merry Christmas! 🎅 I'm Santa Claus. What is your name?"

	askNameAgain = "Ho ho? I didn't catch that. What is your name?"
	greetingFmt  = "Nice to meet you, %s! 🎄 How old are you this year?"

	askAgeAgain    = "Ho ho? That doesn't look like a number. How old are you?"
	childAgeReply  = "Wow! You've been growing so fast! 🌟 Have you been a good helper this year?"
	adultAgeReply  = "That's a wonderful age! Christmas is a time for kindness and gratitude. 🎁 What are you hoping for this year?"
	childGiftReply = "Ooh, that sounds lovely! I'll double check with the elves in the workshop! 🎁"
	adultGiftReply = "That's a thoughtful wish. Remember, the best gifts are the ones we give to others! ✨"
	goodReply      = "I'm so glad to hear that! My Nice List is getting very long this year! 📜"
	naughtyReply   = "It's never too late to spread some kindness before Christmas Eve! 🍪"
	jokeReply      = "What do you call a snowman with a six-pack? An abdominal snowman! Ho ho ho! ☃️"
)

// ChildAgeThreshold splits child-oriented replies from general ones.
const ChildAgeThreshold = 12
