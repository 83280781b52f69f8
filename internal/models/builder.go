// internal/models/builder.go
package models

// FormBuilder accumulates form steps as a value. Every With method returns a
// new builder and leaves the receiver untouched, so a step can be revisited
// without affecting the others.
type FormBuilder struct {
	form ApplicationFormInput
}

func NewFormBuilder() FormBuilder {
	return FormBuilder{}
}

func (b FormBuilder) WithProgram(programType ProgramType, cocProgram string, shortCourses []string) FormBuilder {
	b.form.ProgramType = programType
	b.form.CoCProgram = cocProgram
	b.form.ShortCourses = cloneStrings(shortCourses)
	return b
}

func (b FormBuilder) WithSchedule(intakeDate, studyMode, deliveryMode string) FormBuilder {
	b.form.IntakeDate = intakeDate
	b.form.StudyMode = studyMode
	b.form.DeliveryMode = deliveryMode
	return b
}

func (b FormBuilder) WithIdentity(firstName, middleName, lastName, dob, nationality string) FormBuilder {
	b.form.FirstName = firstName
	b.form.MiddleName = middleName
	b.form.LastName = lastName
	b.form.DOB = dob
	b.form.Nationality = nationality
	return b
}

func (b FormBuilder) WithContact(email, phone, whatsapp string) FormBuilder {
	b.form.Email = email
	b.form.Phone = phone
	b.form.WhatsApp = whatsapp
	return b
}

func (b FormBuilder) WithTravel(passportNumber, passportExpiry, countryOfResidence string) FormBuilder {
	b.form.PassportNumber = passportNumber
	b.form.PassportExpiry = passportExpiry
	b.form.CountryOfResidence = countryOfResidence
	return b
}

func (b FormBuilder) WithEducation(highestEducation, existingCertificates string) FormBuilder {
	b.form.HighestEducation = highestEducation
	b.form.ExistingCertificates = existingCertificates
	return b
}

func (b FormBuilder) WithSeaService(has bool, description string) FormBuilder {
	b.form.HasSeaService = has
	b.form.SeaServiceDescription = description
	return b
}

func (b FormBuilder) WithPassport(file Attachment) FormBuilder {
	f := cloneAttachment(file)
	b.form.Files.Passport = &f
	return b
}

func (b FormBuilder) WithPersonalPicture(file Attachment) FormBuilder {
	f := cloneAttachment(file)
	b.form.Files.PersonalPicture = &f
	return b
}

func (b FormBuilder) WithAdditionalDoc(file Attachment) FormBuilder {
	docs := make([]Attachment, 0, len(b.form.Files.AdditionalDocs)+1)
	docs = append(docs, b.form.Files.AdditionalDocs...)
	b.form.Files.AdditionalDocs = append(docs, cloneAttachment(file))
	return b
}

// Build returns a copy of the accumulated form.
func (b FormBuilder) Build() ApplicationFormInput {
	out := b.form
	out.ShortCourses = cloneStrings(b.form.ShortCourses)
	if b.form.Files.Passport != nil {
		p := *b.form.Files.Passport
		out.Files.Passport = &p
	}
	if b.form.Files.PersonalPicture != nil {
		p := *b.form.Files.PersonalPicture
		out.Files.PersonalPicture = &p
	}
	if b.form.Files.AdditionalDocs != nil {
		out.Files.AdditionalDocs = append([]Attachment(nil), b.form.Files.AdditionalDocs...)
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneAttachment(a Attachment) Attachment {
	a.Content = append([]byte(nil), a.Content...)
	return a
}
