package sentiment

// lexicon 词条权重取自 AFINN-165，覆盖客服对话中的常见词
var lexicon = map[string]int{
	"abandon": -2, "abandoned": -2, "abuse": -3, "abusive": -3, "accept": 1, "accepted": 1,
	"admire": 3, "adore": 3, "advantage": 2, "afraid": -2, "aggravated": -2, "agree": 1,
	"alarm": -2, "amazing": 4, "angry": -3, "annoy": -2, "annoyed": -2, "annoying": -2,
	"anxious": -2, "apologize": -1, "appreciate": 2, "appreciated": 2, "approve": 2,
	"awesome": 4, "awful": -3, "bad": -3, "badly": -3, "beautiful": 3, "best": 3,
	"better": 2, "bitter": -2, "blame": -2, "bored": -2, "boring": -3, "brilliant": 4,
	"broken": -1, "bug": -2, "calm": 2, "cancel": -1, "care": 2, "careful": 2,
	"charged": -3, "cheat": -3, "cheated": -3, "cheerful": 2, "clean": 2, "clear": 1,
	"comfortable": 2, "complain": -2, "complaint": -2, "confused": -2, "cool": 1,
	"crap": -3, "crash": -2, "crazy": -2, "cry": -1, "damn": -2, "damage": -3,
	"damaged": -3, "dead": -3, "delay": -1, "delayed": -1, "delight": 3, "delighted": 3,
	"disappoint": -2, "disappointed": -2, "disappointing": -2, "disaster": -2, "disgusting": -3,
	"dislike": -2, "dissatisfied": -2, "dumb": -3, "easy": 1, "effective": 2, "efficient": 2,
	"embarrassed": -2, "enjoy": 2, "enjoyed": 2, "error": -2, "excellent": 3, "excited": 3,
	"exciting": 3, "fail": -2, "failed": -2, "failure": -2, "fair": 2, "fake": -3,
	"fantastic": 4, "fast": 1, "fault": -2, "favorite": 2, "fear": -2, "fine": 2,
	"fix": 1, "fixed": 2, "fool": -2, "fraud": -4, "free": 1, "friendly": 2,
	"frustrated": -2, "frustrating": -2, "frustration": -2, "fuck": -4, "fucking": -4,
	"fun": 4, "funny": 4, "garbage": -1, "glad": 3, "good": 3, "gorgeous": 3,
	"grateful": 3, "great": 3, "greatest": 3, "happy": 3, "hate": -3, "hated": -3,
	"hates": -3, "hell": -4, "help": 2, "helped": 2, "helpful": 2, "helpless": -2,
	"hope": 2, "hopeful": 2, "horrible": -3, "hurt": -2, "ignore": -1, "ignored": -2,
	"impatient": -2, "impressed": 3, "impressive": 3, "incompetent": -2, "interested": 2,
	"irritated": -3, "joke": 2, "kind": 2, "lame": -2, "late": -1, "laugh": 1,
	"lie": -2, "liar": -3, "like": 2, "liked": 2, "lost": -3, "love": 3,
	"loved": 3, "lovely": 3, "loves": 3, "luck": 3, "mad": -3, "mess": -2,
	"miss": -2, "missing": -2, "mistake": -2, "nasty": -3, "nervous": -2, "nice": 3,
	"no": -1, "ok": 2, "okay": 2, "outrage": -3, "outraged": -3, "pain": -2,
	"pathetic": -2, "perfect": 3, "pleasant": 3, "please": 1, "pleased": 3, "poor": -2,
	"positive": 2, "problem": -2, "problems": -2, "protect": 1, "quick": 2, "rage": -2,
	"recommend": 2, "refund": 0, "regret": -2, "relief": 1, "relieved": 2, "resolved": 2,
	"rude": -2, "ruin": -2, "ruined": -2, "sad": -2, "safe": 1, "satisfied": 2,
	"scam": -2, "scared": -2, "shame": -2, "shit": -4, "shocked": -2, "sick": -2,
	"slow": -2, "smart": 1, "smile": 2, "solid": 2, "solved": 1, "sorry": -1,
	"stuck": -2, "stupid": -2, "success": 2, "successful": 3, "super": 3, "superb": 5,
	"support": 2, "sucks": -3, "terrible": -3, "terrific": 4, "thank": 2, "thanks": 2,
	"thankful": 2, "thrilled": 5, "trouble": -2, "trust": 1, "ugly": -3, "unacceptable": -2,
	"unhappy": -2, "unfair": -2, "upset": -2, "useful": 2, "useless": -2, "waste": -1,
	"wasted": -2, "welcome": 2, "win": 4, "wonderful": 4, "worried": -3, "worse": -3,
	"worst": -3, "worth": 2, "wow": 4, "wrong": -2, "yay": 3, "yes": 1,
}
