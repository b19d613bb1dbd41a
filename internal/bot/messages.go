package bot

// =============================================================================
// General messages
// =============================================================================

const (
	SupportPhone = "+234 814 660 9734"
	SupportEmail = "abujashoemall@gmail.com"

	MsgUnexpectedErr   = "❌ An error occurred. Please try again or use /start to return to the main menu."
	MsgCallbackErr     = "An error occurred. Please try again."
	MsgDatabaseUnavail = "⚠️ Unable to initialize database. Please try again later."
	DefaultFirstName   = "Valued User"
)

// =============================================================================
// Static pages
// =============================================================================

const (
	MsgWelcome = "Hello %s! 👋\n\n" +
		"🏠 Welcome to *House Me* - Your Trusted Real Estate Partner in Abuja!\n\n" +
		"Discover your perfect home or property investment in Nigeria's capital city. " +
		"Whether you're looking to buy, rent, or list properties, House Me connects you " +
		"with verified agents and quality listings across Abuja.\n\n" +
		"✨ *What we offer:*\n" +
		"• Browse verified property listings\n" +
		"• Connect with trusted real estate agents\n" +
		"• List your properties (Agents & Landlords)\n" +
		"• Interactive map views\n" +
		"• Property comparison tools\n\n" +
		"📍 Serving Abuja residents with professionalism and integrity.\n\n" +
		"💬 Need help? Contact our support team via WhatsApp:\n" +
		"📱 " + SupportPhone + "\n\n" +
		"Tap the button below to get started!"

	MsgAgreement = "📋 *USER AGREEMENT*\n\n" +
		"*Last Updated:* %s\n\n" +
		"By using House Me's services, you agree to the following terms:\n\n" +
		"*1. Account Registration*\n" +
		"• You must provide accurate and complete information\n" +
		"• You are responsible for maintaining the security of your account\n" +
		"• One account per user\n\n" +
		"*2. Property Listings*\n" +
		"• All property information must be accurate and truthful\n" +
		"• You may not list properties you don't own or have authorization to list\n" +
		"• House Me reserves the right to verify and remove listings\n\n" +
		"*3. User Conduct*\n" +
		"• Respectful communication with agents and other users is required\n" +
		"• No harassment, spam, or fraudulent activities\n" +
		"• Compliance with Nigerian real estate laws and regulations\n\n" +
		"*4. Privacy*\n" +
		"• Your personal information will be handled according to our Privacy Policy\n" +
		"• Contact information may be shared with verified agents\n\n" +
		"*5. Limitation of Liability*\n" +
		"• House Me serves as a platform connecting buyers, renters, and agents\n" +
		"• We do not guarantee property conditions or transaction outcomes\n" +
		"• Users are responsible for due diligence\n\n" +
		"*6. Service Availability*\n" +
		"• House Me reserves the right to modify or discontinue services\n" +
		"• We aim to maintain service availability but cannot guarantee 100%% uptime\n\n" +
		"For questions about this agreement, contact us via WhatsApp:\n" +
		"📱 " + SupportPhone

	MsgTerms = "📜 *TERMS OF SERVICE*\n\n" +
		"*Last Updated:* %s\n\n" +
		"*1. Acceptance of Terms*\n" +
		"By accessing and using House Me, you accept and agree to be bound by these Terms of Service.\n\n" +
		"*2. Platform Description*\n" +
		"House Me is a real estate platform connecting property seekers with verified agents and landlords in Abuja, Nigeria.\n\n" +
		"*3. User Eligibility*\n" +
		"• You must be at least 18 years old\n" +
		"• You must have the legal capacity to enter into contracts\n" +
		"• You must comply with all applicable Nigerian laws\n\n" +
		"*4. Property Information*\n" +
		"• Property listings are provided by agents and landlords\n" +
		"• House Me verifies agents but not individual property details\n" +
		"• Users should conduct their own inspections and due diligence\n" +
		"• Prices and availability are subject to change\n\n" +
		"*5. Agent Verification*\n" +
		"• House Me verifies agent credentials to the best of our ability\n" +
		"• Verified status indicates basic verification, not endorsement\n" +
		"• Users should still exercise caution in all transactions\n\n" +
		"*6. Prohibited Activities*\n" +
		"• Fraudulent listings or misrepresentation\n" +
		"• Harassment or abuse of other users\n" +
		"• Automated data scraping or unauthorized access\n" +
		"• Any illegal activities\n\n" +
		"*7. Intellectual Property*\n" +
		"• All content on House Me is protected by copyright\n" +
		"• Property images belong to their respective owners\n" +
		"• You may not reproduce content without permission\n\n" +
		"*8. Disclaimer*\n" +
		"• House Me is a platform only; we are not a party to transactions\n" +
		"• We do not guarantee property conditions, prices, or availability\n" +
		"• Users enter into agreements at their own risk\n\n" +
		"*9. Termination*\n" +
		"House Me reserves the right to suspend or terminate accounts that violate these terms.\n\n" +
		"*10. Changes to Terms*\n" +
		"We may update these terms; continued use constitutes acceptance.\n\n" +
		"*11. Contact Information*\n" +
		"For questions about these terms:\n" +
		"📱 WhatsApp: " + SupportPhone + "\n" +
		"📧 Email: " + SupportEmail + "\n\n" +
		"*Jurisdiction:* These terms are governed by Nigerian law."

	MsgHelp = "ℹ️ *HOUSE ME - HELP & SUPPORT*\n\n" +
		"*Getting Started:*\n" +
		"1. Tap '🏠 Open House Me App' to access our web platform\n" +
		"2. Browse properties by location, price, type, and features\n" +
		"3. Create an account to list properties or save favorites\n\n" +
		"*For Property Seekers:*\n" +
		"• Browse verified listings across Abuja\n" +
		"• Use filters to find your perfect property\n" +
		"• View properties on interactive maps\n" +
		"• Contact agents directly via WhatsApp\n" +
		"• Compare properties side-by-side\n\n" +
		"*For Agents & Landlords:*\n" +
		"• Create an account and get verified\n" +
		"• List your properties with photos and details\n" +
		"• Manage your listings from your dashboard\n" +
		"• Connect with potential buyers and renters\n\n" +
		"*Available Commands:*\n" +
		"/start - Main menu and welcome\n" +
		"/help - Show this help message\n" +
		"/terms - View Terms of Service\n" +
		"/agreement - View User Agreement\n" +
		"/contact - Contact support\n\n" +
		"*Need More Help?*\n" +
		"Our support team is ready to assist you:\n" +
		"📱 WhatsApp: " + SupportPhone + "\n" +
		"📧 Email: " + SupportEmail + "\n\n" +
		"We're here to help you find your perfect property in Abuja! 🏠"

	MsgContact = "💬 *CONTACT HOUSE ME SUPPORT*\n\n" +
		"We're here to help you with any questions or concerns!\n\n" +
		"*📱 WhatsApp Support:*\n" +
		"Click here to chat: %s\n" +
		"Or send a message to: " + SupportPhone + "\n\n" +
		"*📧 Email Support:*\n" +
		SupportEmail + "\n\n" +
		"*🕐 Response Time:*\n" +
		"We typically respond within 24 hours during business days.\n\n" +
		"*📍 Location:*\n" +
		"Serving Abuja, Nigeria\n\n" +
		"*Common Inquiries:*\n" +
		"• Property listing questions\n" +
		"• Account issues\n" +
		"• Agent verification\n" +
		"• General platform questions\n" +
		"• Technical support\n\n" +
		"For urgent matters, please use WhatsApp for faster response."

	MsgAlerts = "🔔 *PROPERTY ALERTS*\n\n" +
		"Set up alerts to be notified when new properties match your criteria.\n\n" +
		"*Coming Soon!*\n\n" +
		"This feature will allow you to:\n" +
		"• Set price range alerts\n" +
		"• Get notified about properties in specific areas\n" +
		"• Receive alerts for your preferred property types\n\n" +
		"For now, you can browse properties using the search feature or contact our support team for assistance."
)

// LastUpdatedLayout formats the "Last Updated" date of the agreement and terms.
const LastUpdatedLayout = "January 02, 2006"

// =============================================================================
// Search menus and prompts
// =============================================================================

const (
	MsgSearchMenu = "🔍 *PROPERTY SEARCH*\n\n" +
		"Choose how you'd like to search for properties:\n\n" +
		"• *By Location* - Search properties in specific areas\n" +
		"• *By Price* - Find properties within your budget\n" +
		"• *By Type* - Filter by property type (Duplex, Apartment, etc.)\n" +
		"• *Text Search* - Search by keywords\n\n" +
		"Select an option below:"

	MsgPopularAreas = "📍 *POPULAR AREAS IN ABUJA*\n\n" +
		"Tap on any area below to see available properties:\n\n" +
		"These are the most searched areas in Abuja. " +
		"Select one to browse properties in that location."

	MsgTypePicker = "🏘️ *Search by Property Type*\n\nSelect a property type to browse:"

	MsgPromptLocation = "📍 *Search by Location*\n\nPlease type the area name (e.g., Maitama, Asokoro, Gwarinpa):"
	MsgPromptPrice    = "💰 *Search by Price*\n\nPlease send your price range in this format:\n\n`min-max`\n\nExample: `5000000-20000000`\n\nOr send just maximum price:\n`20000000`"
	MsgPromptText     = "📝 *Text Search*\n\nType keywords to search (e.g., 'luxury apartment', 'maitama duplex'):"

	MsgInvalidPrice = "❌ Invalid price format. Please send numbers only, like:\n`5000000-20000000`\nor\n`20000000`"
)

// =============================================================================
// Search progress and results
// =============================================================================

const (
	MsgSearchingArea     = "Searching properties in %s..."
	MsgSearchingType     = "Searching %s properties..."
	MsgSearchingLocation = "🔍 Searching properties in %s..."
	MsgSearchingRange    = "🔍 Searching properties from %s to %s..."
	MsgSearchingMaxPrice = "🔍 Searching properties up to %s..."
	MsgSearchingText     = "🔍 Searching for '%s'..."

	MsgResultsLocation = "🏠 *Properties in* %s\n\nFound %s:\n\nSelect a property to view details:"
	MsgResultsType     = "🏘️ %s *Properties*\n\nFound %s:\n\nSelect a property to view details:"
	MsgResultsPrice    = "💰 *Properties in your price range*\n\nFound %s:\n\nSelect a property to view details:"
	MsgResultsText     = "📝 *Search Results for* '%s'\n\nFound %s:\n\nSelect a property to view details:"
	MsgResultsPage     = "🏠 *Properties*\n\nFound %s (Page %d):\n\nSelect a property to view details:"

	MsgNoResultsArea     = "❌ No properties found in %s. Try another area or contact us for assistance."
	MsgNoResultsType     = "❌ No %s properties found. Try another type or contact us."
	MsgNoResultsLocation = "❌ No properties found in %s. Try another location or browse popular areas."
	MsgNoResultsPrice    = "❌ No properties found in this price range. Try a different range or browse all properties."
	MsgNoResultsText     = "❌ No properties found matching '%s'. Try different keywords or browse by location/type."
	MsgNoResultsPage     = "❌ No more properties found. Try another search or contact us for assistance."
)

// =============================================================================
// Listing detail and contact
// =============================================================================

const (
	MsgPropertyNotFound = "Property not found"
	MsgNoAgentContact   = "No agent contact available for this property"
	MsgListingUntitled  = "Untitled"
	MsgListingNoDesc    = "No description available."
	MsgNotAvailable     = "N/A"
)

// =============================================================================
// Favorites
// =============================================================================

const (
	MsgFavoriteAdded       = "✅ Added to favorites!"
	MsgFavoriteExists      = "Already in favorites"
	MsgFavoriteRemoved     = "❌ Removed from favorites"
	MsgFavoriteAddError    = "Error adding to favorites"
	MsgFavoriteRemoveError = "Error removing favorite"

	MsgFavoritesEmpty       = "⭐ *My Favorites*\n\nYou haven't saved any favorites yet.\n\nBrowse properties and tap ⭐ to save your favorites!"
	MsgFavoritesList        = "⭐ *My Favorites*\n\nYou have %s:\n\nSelect a property to view details:"
	MsgFavoritesUnavailable = "⭐ *My Favorites*\n\nYour saved properties are no longer available."
)

// =============================================================================
// Referrals
// =============================================================================

const (
	MsgReferralReward = "🎉 %s joined House Me with your invite link! %s has been added to your balance."
)

// =============================================================================
// Admin command messages
// =============================================================================

const (
	MsgAdminRefreshStarted    = "🔄 Profile image refresh started (run `%s`)."
	MsgAdminRefreshRunning    = "⏳ A profile image refresh is already running (run `%s`, %s processed)."
	MsgAdminRefreshFinished   = "✅ Profile image refresh finished.\n\nProcessed: %d\nUpdated: %d\nFailed: %d\nDuration: %s"
	MsgAdminRefreshTerminated = "🛑 Profile image refresh terminated.\n\nProcessed: %d\nUpdated: %d\nFailed: %d\nDuration: %s"
	MsgAdminRefreshExpired    = "⌛ Profile image refresh hit its time limit.\n\nProcessed: %d\nUpdated: %d\nFailed: %d\nDuration: %s"
	MsgAdminRefreshFailed     = "❌ Profile image refresh stopped with an error after %d users: %s"
	MsgAdminTerminating       = "🛑 Stopping profile image refresh after the current user..."
	MsgAdminNothingToStop     = "No profile image refresh is running."
	MsgAdminStatus            = "📊 *Bot status*\n\nUsers: %s\nSession store: %s\nActive chats: %d\nImage refresh: %s"
	MsgAdminJobIdle           = "idle"
	MsgAdminJobActive         = "running since %s, %s processed"
	MsgAdminExportCaption     = "👥 House Me users (%s)"
	MsgAdminExportEmpty       = "No users to export."
)

// =============================================================================
// Button labels
// =============================================================================

const (
	BtnOpenApp        = "🏠 Open House Me App"
	BtnSearch         = "🔍 Search Properties"
	BtnFavorites      = "⭐ My Favorites"
	BtnPopularAreas   = "📍 Popular Areas"
	BtnAlerts         = "🔔 Property Alerts"
	BtnSupport        = "💬 Contact Support"
	BtnAgreement      = "📋 Agreement"
	BtnTerms          = "📜 Terms"
	BtnHelp           = "ℹ️ Help"
	BtnBackToMenu     = "🔙 Back to Main Menu"
	BtnBack           = "🔙 Back"
	BtnByLocation     = "📍 Search by Location"
	BtnByPrice        = "💰 Search by Price"
	BtnByType         = "🏘️ Search by Type"
	BtnTextSearch     = "📝 Text Search"
	BtnAreaFmt        = "📍 %s"
	BtnTypeFmt        = "🏘️ %s"
	BtnListingFmt     = "🏠 %s..."
	BtnAddFavorite    = "⭐ Add to Favorites"
	BtnRemoveFavorite = "❌ Remove from Favorites"
	BtnContactAgent   = "💬 Contact Agent"
	BtnBackToSearch   = "🔙 Back to Search"
	BtnPrevious       = "◀️ Previous"
	BtnNext           = "Next ▶️"
	BtnWhatsApp       = "💬 WhatsApp"
	BtnChatWhatsApp   = "💬 Chat on WhatsApp"
	BtnBackToProperty = "🔙 Back to Property"
)
