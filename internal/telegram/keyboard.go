package telegram

// ReplyMarkup is implemented by the keyboard types accepted by SendMessage.
type ReplyMarkup interface {
	replyMarkup()
}

// KeyboardButton is one button on a reply keyboard.
type KeyboardButton struct {
	Text string `json:"text"`
}

// ReplyKeyboardMarkup renders a custom reply keyboard under the input field.
type ReplyKeyboardMarkup struct {
	Keyboard        [][]KeyboardButton `json:"keyboard"`
	OneTimeKeyboard bool               `json:"one_time_keyboard,omitempty"`
	ResizeKeyboard  bool               `json:"resize_keyboard,omitempty"`
}

func (ReplyKeyboardMarkup) replyMarkup() {}

// ReplyKeyboardRemove removes a previously shown reply keyboard.
type ReplyKeyboardRemove struct {
	RemoveKeyboard bool `json:"remove_keyboard"`
}

func (ReplyKeyboardRemove) replyMarkup() {}

// RowKeyboard builds a one-time single-row keyboard from button labels.
func RowKeyboard(labels ...string) ReplyKeyboardMarkup {
	row := make([]KeyboardButton, len(labels))
	for i, label := range labels {
		row[i] = KeyboardButton{Text: label}
	}
	return ReplyKeyboardMarkup{
		Keyboard:        [][]KeyboardButton{row},
		OneTimeKeyboard: true,
		ResizeKeyboard:  true,
	}
}

// RemoveKeyboard returns markup that clears any visible reply keyboard.
func RemoveKeyboard() ReplyKeyboardRemove {
	return ReplyKeyboardRemove{RemoveKeyboard: true}
}
