package domain

// AppSettings holds per-device preferences.
type AppSettings struct {
	Theme          string `json:"theme"`
	Notifications  bool   `json:"notifications"`
	SMSAlerts      bool   `json:"smsAlerts"`
	BiometricLogin bool   `json:"biometricLogin"`
	Language       string `json:"language"`
}

// SettingsPatch carries optional settings updates.
type SettingsPatch struct {
	Theme          *string
	Notifications  *bool
	SMSAlerts      *bool
	BiometricLogin *bool
	Language       *string
}

// Apply merges the patch into the settings.
func (s *AppSettings) Apply(patch SettingsPatch) {
	if patch.Theme != nil {
		s.Theme = *patch.Theme
	}
	if patch.Notifications != nil {
		s.Notifications = *patch.Notifications
	}
	if patch.SMSAlerts != nil {
		s.SMSAlerts = *patch.SMSAlerts
	}
	if patch.BiometricLogin != nil {
		s.BiometricLogin = *patch.BiometricLogin
	}
	if patch.Language != nil {
		s.Language = *patch.Language
	}
}
