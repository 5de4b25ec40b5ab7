package tgz

import "regexp"

// messageData is the declarative response of an action: what to send when
// the action fires and no handler is attached.
type messageData struct {
	text        string
	hasText     bool
	img         []string
	gif         string
	video       string
	audio       string
	voice       string
	doc         string
	sticker     string
	dice        string
	params      map[string]any
	reply       bool
	replyTo     int
	kbd         [][]Button
	kbdSet      bool
	inline      bool
	oneTime     bool
	resize      bool
	removeKbd   bool
	editText    bool
	editCaption bool
}

func (m *messageData) empty() bool {
	return !m.hasText && len(m.img) == 0 && m.gif == "" && m.video == "" &&
		m.audio == "" && m.voice == "" && m.doc == "" && m.sticker == "" &&
		m.dice == "" && len(m.params) == 0 && !m.kbdSet && !m.removeKbd
}

// Action is one registered route: a match condition paired with a response.
// The response is a handler, a declarative message, or a redirect to another
// action; a handler wins when several are set. All setters return the action
// for chaining and must only be called during bot setup.
type Action struct {
	id         string
	conditions []string
	// patterns runs parallel to conditions. For regex routes every slot is
	// set; for command routes only placeholder conditions compile to one.
	patterns []*regexp.Regexp

	handler       HandlerFunc
	msg           messageData
	queryText     string
	redirectTo    string
	middleware    MiddlewareFunc
	allow         []int64
	deny          []int64
	allowFallback HandlerFunc
	denyFallback  HandlerFunc
}

func newAction(id string, conditions []string) *Action {
	if len(conditions) == 0 {
		conditions = []string{id}
	}
	return &Action{id: id, conditions: conditions}
}

// ID returns the action's identity.
func (a *Action) ID() string {
	return a.id
}

// Conditions returns the match conditions in declaration order.
func (a *Action) Conditions() []string {
	return a.conditions
}

// Func attaches a handler. A handler takes priority over the declarative
// message data.
func (a *Action) Func(h HandlerFunc) *Action {
	a.handler = h
	return a
}

// Redirect replaces this action's execution with the target action's,
// resolved by id at dispatch time. The target's matching is not rerun.
func (a *Action) Redirect(id string) *Action {
	a.redirectTo = id
	return a
}

// Middleware intercepts this action's resolution. The interceptor receives
// the remaining resolution steps as next.
func (a *Action) Middleware(mw MiddlewareFunc) *Action {
	a.middleware = mw
	return a
}

// Allow restricts the action to the given user ids.
func (a *Action) Allow(userIDs ...int64) *Action {
	a.allow = append(a.allow, userIDs...)
	return a
}

// AllowFallback runs when a user outside the allow list hits the action.
func (a *Action) AllowFallback(h HandlerFunc) *Action {
	a.allowFallback = h
	return a
}

// Deny blocks the given user ids from the action.
func (a *Action) Deny(userIDs ...int64) *Action {
	a.deny = append(a.deny, userIDs...)
	return a
}

// DenyFallback runs when a denied user hits the action.
func (a *Action) DenyFallback(h HandlerFunc) *Action {
	a.denyFallback = h
	return a
}

// Query sets the popup text shown when the action is fired by a button
// press and the callback query is acknowledged.
func (a *Action) Query(text string) *Action {
	a.queryText = text
	return a
}

// Text sets the response text.
func (a *Action) Text(text string) *Action {
	a.msg.text = text
	a.msg.hasText = true
	return a
}

// EditText responds by editing the current message instead of sending.
func (a *Action) EditText(text string) *Action {
	a.msg.text = text
	a.msg.hasText = true
	a.msg.editText = true
	return a
}

// EditCaption responds by editing the current message's caption.
func (a *Action) EditCaption(text string) *Action {
	a.msg.text = text
	a.msg.hasText = true
	a.msg.editCaption = true
	return a
}

// Img attaches one photo, or several as a media group. Values are URLs or
// file ids.
func (a *Action) Img(urls ...string) *Action {
	a.msg.img = append(a.msg.img, urls...)
	return a
}

// Gif attaches an animation.
func (a *Action) Gif(url string) *Action {
	a.msg.gif = url
	return a
}

// Video attaches a video.
func (a *Action) Video(url string) *Action {
	a.msg.video = url
	return a
}

// Audio attaches an audio file.
func (a *Action) Audio(url string) *Action {
	a.msg.audio = url
	return a
}

// Voice attaches a voice note.
func (a *Action) Voice(url string) *Action {
	a.msg.voice = url
	return a
}

// Doc attaches a document.
func (a *Action) Doc(url string) *Action {
	a.msg.doc = url
	return a
}

// Sticker responds with a sticker.
func (a *Action) Sticker(fileID string) *Action {
	a.msg.sticker = fileID
	return a
}

// Dice responds with a dice roll of the given emoji.
func (a *Action) Dice(emoji string) *Action {
	a.msg.dice = emoji
	return a
}

// Params merges arbitrary extra fields into the outgoing API call.
func (a *Action) Params(params map[string]any) *Action {
	a.msg.params = params
	return a
}

// Reply marks the response as a reply to the triggering message.
func (a *Action) Reply() *Action {
	a.msg.reply = true
	return a
}

// ReplyTo marks the response as a reply to an explicit message id.
func (a *Action) ReplyTo(messageID int) *Action {
	a.msg.replyTo = messageID
	return a
}

// Kbd attaches a reply keyboard. Rows may mix registered-button references
// (BtnID) and literal buttons.
func (a *Action) Kbd(rows [][]Button, oneTime, resize bool) *Action {
	a.msg.kbd = rows
	a.msg.kbdSet = true
	a.msg.inline = false
	a.msg.oneTime = oneTime
	a.msg.resize = resize
	return a
}

// InlineKbd attaches an inline keyboard.
func (a *Action) InlineKbd(rows [][]Button) *Action {
	a.msg.kbd = rows
	a.msg.kbdSet = true
	a.msg.inline = true
	a.msg.oneTime = false
	a.msg.resize = false
	return a
}

// RemoveKbd removes the reply keyboard with the response.
func (a *Action) RemoveKbd() *Action {
	a.msg.removeKbd = true
	return a
}
